package session

import (
	"fmt"
	"strings"

	"github.com/spark-root/coffea-slurm/internal/dataset"
	"github.com/spark-root/coffea-slurm/internal/errors"
)

// Coordinate is a group:artifact:version package coordinate
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// Module returns the group:artifact part of the coordinate
func (c Coordinate) Module() string {
	return c.Group + ":" + c.Artifact
}

func (c Coordinate) String() string {
	return c.Module() + ":" + c.Version
}

// ParseCoordinate parses a group:artifact:version coordinate
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Coordinate{}, errors.New(
			errors.PackageUnresolved,
			fmt.Sprintf("provided package %q is not in the form group:artifact:version", s),
		)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, errors.New(
				errors.PackageUnresolved,
				fmt.Sprintf("provided package %q has an empty field", s),
			)
		}
	}

	return Coordinate{
		Group:    parts[0],
		Artifact: parts[1],
		Version:  parts[2],
	}, nil
}

// resolvePackages parses a comma separated coordinate list and checks that
// every package provides at least one connector
func resolvePackages(list string) ([]Coordinate, error) {
	var coordinates []Coordinate
	for _, entry := range strings.Split(list, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		c, err := ParseCoordinate(entry)
		if err != nil {
			return nil, err
		}
		if len(dataset.ProvidedBy(c.Module())) == 0 {
			return nil, errors.New(
				errors.PackageUnresolved,
				fmt.Sprintf("unresolved dependency: %s: not found", c),
			)
		}
		coordinates = append(coordinates, c)
	}

	return coordinates, nil
}
