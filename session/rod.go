package session

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrTabClosed is returned when an operation is attempted on a closed tab.
var ErrTabClosed = errors.New("tab already closed")

// RodTab adapts a rod page to the pool's Tab interface.
type RodTab struct {
	page   *rod.Page
	closed atomic.Bool
}

// Page exposes the underlying rod page to the owning workflow.
func (t *RodTab) Page() *rod.Page {
	return t.page
}

// Activate brings the tab to the foreground. If the underlying target is
// gone (closed externally), the tab marks itself closed so the next
// rotation sweep prunes it.
func (t *RodTab) Activate() error {
	if t.closed.Load() {
		return ErrTabClosed
	}
	if _, err := t.page.Info(); err != nil {
		t.closed.Store(true)
		return err
	}
	_, err := t.page.Activate()
	return err
}

// Close closes the underlying page once; later calls are no-ops.
func (t *RodTab) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.page.Close()
}

// Closed reports whether the tab has been closed.
func (t *RodTab) Closed() bool {
	return t.closed.Load()
}

// NewRodFactory returns a Factory creating fresh tabs on the given browser
// with stealth JS and the pinned user agent installed before any
// navigation.
func NewRodFactory(browser *rod.Browser, userAgent string) Factory {
	return func() (Tab, error) {
		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, err
		}
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("session: stealth injection failed, proceeding without stealth", "error", err)
		}
		if userAgent != "" {
			if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
				slog.Warn("session: failed to set user agent", "error", err)
			}
		}
		return &RodTab{page: page}, nil
	}
}
