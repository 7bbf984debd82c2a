package fieldcrypt

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Record is a keyed set of column values that can copy itself.
// *hrana.Row and Fields both satisfy it.
type Record[R any] interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Clone() R
}

// Fields is a plain map record.
type Fields map[string]any

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// Set stores value under key.
func (f Fields) Set(key string, value any) {
	f[key] = value
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

type target struct {
	key   string
	value string
}

// targets lists the keys in record holding string values.
// Absent keys and non-string values are skipped.
func targets[R Record[R]](record R, keys []string) []target {
	out := make([]target, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		v, ok := record.Get(k)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, target{key: k, value: s})
	}
	return out
}

// EncryptFields returns a copy of record with the string values under keys
// encrypted. Each field is encrypted concurrently; the record itself is only
// written after all of them finish. The input record is not modified.
func EncryptFields[R Record[R]](ctx context.Context, c *Cipher, record R, keys []string) (R, error) {
	start := time.Now()
	work := targets(record, keys)
	results := make([]string, len(work))

	g, _ := errgroup.WithContext(ctx)
	for i, t := range work {
		g.Go(func() error {
			enc, err := c.EncryptField(t.value)
			if err != nil {
				return fmt.Errorf("field %q: %w", t.key, err)
			}
			results[i] = enc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		emitFieldsEncrypted(ctx, len(work), time.Since(start), err)
		var zero R
		return zero, err
	}

	out := record.Clone()
	for i, t := range work {
		out.Set(t.key, results[i])
	}

	emitFieldsEncrypted(ctx, len(work), time.Since(start), nil)
	return out, nil
}

// DecryptFields returns a copy of record with the string values under keys
// decrypted. Values that fail to decrypt are kept as stored, so the call
// always succeeds.
func DecryptFields[R Record[R]](ctx context.Context, c *Cipher, record R, keys []string) R {
	start := time.Now()
	work := targets(record, keys)
	results := make([]string, len(work))

	var g errgroup.Group
	for i, t := range work {
		g.Go(func() error {
			results[i] = c.decryptField(ctx, t.key, t.value)
			return nil
		})
	}
	_ = g.Wait()

	out := record.Clone()
	for i, t := range work {
		out.Set(t.key, results[i])
	}

	emitFieldsDecrypted(ctx, len(work), time.Since(start))
	return out
}
