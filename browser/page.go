package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// Element waits up to timeout for the first node matching selector.
// The returned element is detached from the wait deadline so later
// interactions use the page's own context.
func Element(page *rod.Page, selector string, timeout time.Duration) (*rod.Element, error) {
	el, err := page.Timeout(timeout).Element(selector)
	if err != nil {
		return nil, err
	}
	return el.CancelTimeout(), nil
}

// VisibleElement waits up to timeout for selector to exist and become
// visible. Result grids on postback portals exist in the DOM before they
// are shown, so presence alone is not enough.
func VisibleElement(page *rod.Page, selector string, timeout time.Duration) (*rod.Element, error) {
	p := page.Timeout(timeout)
	el, err := p.Element(selector)
	if err != nil {
		return nil, err
	}
	if err := el.WaitVisible(); err != nil {
		return nil, err
	}
	return el.CancelTimeout(), nil
}

// OuterHTML captures the outer markup of the first node matching selector,
// or "" when the node is absent. Errors are swallowed; an uncapturable
// fragment is treated the same as a missing one.
func OuterHTML(page *rod.Page, selector string) string {
	res, err := page.Eval(`(sel) => {
		const el = document.querySelector(sel);
		return el ? el.outerHTML : "";
	}`, selector)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// ControlValue reads the current value of a form control.
func ControlValue(page *rod.Page, selector string) (string, error) {
	res, err := page.Eval(`(sel) => document.querySelector(sel).value`, selector)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// SelectWithPostback authoritatively sets an ASP.NET dropdown by element id,
// dispatches the change notification a real user would produce, and executes
// the page's postback directly. The control's default value after navigation
// cannot be trusted to be ready, so it is always set explicitly.
func SelectWithPostback(page *rod.Page, elementID, value string) error {
	_, err := page.Eval(`(id, value) => {
		const select = document.getElementById(id);
		if (!select) throw new Error("select not found: " + id);
		select.value = value;

		const event = new Event("change", { bubbles: true });
		select.dispatchEvent(event);

		if (typeof window.__doPostBack === "function") {
			window.__doPostBack(id, "");
		}
	}`, elementID, value)
	return err
}

// ClearAndType replaces the element's current content with text.
func ClearAndType(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}

// Sleep waits for d unless ctx ends first. Postback portals re-render
// asynchronously with no reliable completion signal, so fixed settles are
// part of every interaction sequence.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
