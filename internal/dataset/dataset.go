package dataset

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/spark-root/coffea-slurm/internal/errors"
)

// Dataset is a lazy description of a read: a connector, its options and
// the locators to read. It can be evaluated any number of times.
type Dataset struct {
	connector Connector
	options   Options
	locators  []string
	env       Env
}

// Format returns the short name of the connector
func (d *Dataset) Format() string {
	return d.connector.ShortName()
}

// Options returns a copy of the read options
func (d *Dataset) Options() Options {
	return d.options.clone()
}

// Locators returns a copy of the locators
func (d *Dataset) Locators() []string {
	return append([]string(nil), d.locators...)
}

func (d *Dataset) source(locator string) Source {
	return Source{
		Locator:    locator,
		Options:    d.options,
		ScratchDir: d.env.ScratchDir,
	}
}

// Count returns the number of records across all locators. Each locator
// is one partition; partitions are counted concurrently up to the session
// parallelism and the first failure cancels the others.
func (d *Dataset) Count(ctx context.Context) (int64, error) {
	counts := make([]int64, len(d.locators))

	g, gctx := errgroup.WithContext(ctx)
	if d.env.Parallelism > 0 {
		g.SetLimit(d.env.Parallelism)
	}

	for i, locator := range d.locators {
		i, locator := i, locator
		g.Go(func() error {
			taskLogger := log.WithFields(log.Fields{
				"Format":    d.Format(),
				"Partition": i,
				"Locator":   locator,
			})
			taskLogger.Info("Running count task")

			n, err := d.connector.Count(gctx, d.source(locator))
			if err != nil {
				return fmt.Errorf("counting partition %d: %w", i, err)
			}
			if n < 0 {
				return errors.New(
					errors.InvalidCount,
					fmt.Sprintf("connector %s returned %d records for %s", d.Format(), n, locator),
				)
			}

			taskLogger.WithField("Records", n).Info("Finished count task")
			counts[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Columns returns the column names found in the first locator
func (d *Dataset) Columns(ctx context.Context) ([]string, error) {
	return d.connector.Columns(ctx, d.source(d.locators[0]))
}
