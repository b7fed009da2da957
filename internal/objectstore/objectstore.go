package objectstore

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the locator scheme served by the object store
const Scheme = "s3"

// Object represent a cloud object
type Object struct {
	Bucket string
	Key    string
}

// String returns the locator of the object
func (o Object) String() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, o.Bucket, o.Key)
}

// IsObjectLocator reports whether locator addresses the object store
func IsObjectLocator(locator string) bool {
	return strings.HasPrefix(locator, Scheme+"://")
}

// ParseLocator splits an s3://bucket/key locator into its object
func ParseLocator(locator string) (Object, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return Object{}, err
	}
	if u.Scheme != Scheme {
		return Object{}, fmt.Errorf("locator %q is not an %s:// locator", locator, Scheme)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Object{}, fmt.Errorf("locator %q must name a bucket and a key", locator)
	}

	return Object{
		Bucket: u.Host,
		Key:    key,
	}, nil
}
