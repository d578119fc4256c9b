package resource

import (
	"context"
	"io"
)

// LimitWriter wraps w so that writes consume the controller's IO budget.
// Writes larger than the limiter burst are split, so arbitrarily large
// buffers pass through instead of overflowing the limiter. Without a
// configured IO limit w is returned unchanged.
func (c *Controller) LimitWriter(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, w: w, c: c}
}

// LimitReader wraps r so that reads consume the controller's IO budget.
// The budget is reserved for the full buffer before reading, since the
// actual read size is unknown up front; buffers larger than the limiter
// burst are trimmed. Without a configured IO limit r is returned
// unchanged.
func (c *Controller) LimitReader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, c: c}
}

type limitedWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	burst := w.c.ioLimiter.Burst()
	var written int
	for len(p) > 0 {
		chunk := p
		if len(chunk) > burst {
			chunk = chunk[:burst]
		}
		if err := w.c.AcquireIO(w.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := w.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if burst := r.c.ioLimiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	if err := r.c.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
