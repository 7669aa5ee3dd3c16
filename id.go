package crate

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/syssam/crate/config"
)

// IDGenerator returns a new primary key value. Crate has no
// auto-increment columns, keys are generated by the application.
type IDGenerator func() string

// UUID returns random (version 4) UUID strings.
func UUID() IDGenerator {
	return uuid.NewString
}

// ULID returns lexically sortable ULID strings. IDs generated within the
// same millisecond are monotonic. The generator is not safe for
// concurrent use.
func ULID() IDGenerator {
	return ulidGenerator(rand.Reader, time.Now)
}

func ulidGenerator(src io.Reader, now func() time.Time) IDGenerator {
	entropy := ulid.Monotonic(src, 0)
	return func() string {
		return ulid.MustNew(ulid.Timestamp(now()), entropy).String()
	}
}

// generatorOf returns the named ID generator.
func generatorOf(name string) (IDGenerator, error) {
	switch name {
	case "", config.IDUUID:
		return UUID(), nil
	case config.IDULID:
		return ULID(), nil
	default:
		return nil, fmt.Errorf("crate: unknown id generator %q", name)
	}
}
