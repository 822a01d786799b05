package viewer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/turbine-viewer/internal/model"
)

// Comparison shows two conditions side by side. Both slots share one mode and
// run independently: neither waits for nor cancels the other.
type Comparison struct {
	slots [2]*Slot
}

func NewComparison(first, second *Slot) *Comparison {
	return &Comparison{slots: [2]*Slot{first, second}}
}

// Slot returns slot i (0 or 1).
func (c *Comparison) Slot(i int) *Slot { return c.slots[i] }

func (c *Comparison) Slots() []*Slot { return c.slots[:] }

// Query fetches both conditions concurrently. Errors of both slots are joined.
func (c *Comparison) Query(ctx context.Context, first, second model.QueryParams) error {
	params := [2]model.QueryParams{first, second}
	return c.each(func(i int, s *Slot) error {
		return s.Query(ctx, params[i])
	})
}

func (c *Comparison) SetMode(ctx context.Context, m model.Mode) error {
	return c.each(func(_ int, s *Slot) error { return s.SetMode(ctx, m) })
}

func (c *Comparison) SelectCard(ctx context.Context, card model.Card) error {
	return c.each(func(_ int, s *Slot) error { return s.SelectCard(ctx, card) })
}

// PressButton applies the press to the shared mode, so both slots end up in
// the same mode even if they were out of step.
func (c *Comparison) PressButton(ctx context.Context, b model.Button) error {
	if b == model.ButtonReset {
		return c.ResetCamera()
	}
	m := c.slots[0].Mode()
	if m.Button == b {
		m.Button = model.ButtonNone
	} else {
		m.Button = b
	}
	return c.SetMode(ctx, m)
}

func (c *Comparison) SetProfile(ctx context.Context, p model.Profile) error {
	return c.each(func(_ int, s *Slot) error { return s.SetProfile(ctx, p) })
}

func (c *Comparison) ResetCamera() error {
	return c.each(func(_ int, s *Slot) error { return s.ResetCamera() })
}

func (c *Comparison) Close() error {
	return c.each(func(_ int, s *Slot) error { return s.Close() })
}

// each runs fn on both slots concurrently and joins their errors.
func (c *Comparison) each(fn func(i int, s *Slot) error) error {
	var (
		g    errgroup.Group
		errs [2]error
	)
	for i, s := range c.slots {
		i, s := i, s
		g.Go(func() error {
			if err := fn(i, s); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs[:]...)
}
