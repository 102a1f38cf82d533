package carrier

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/seatrack/browser"
	"github.com/use-agent/seatrack/config"
	"github.com/use-agent/seatrack/extract"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
)

const (
	uwldCode = "UWLD"
	uwldURL  = "https://www.shipuwl.com/ocean-freight/"
)

// The quick-view result is fully server-rendered, so scripts get blocked
// along with the usual sub-resources.
var uwldBlockedTypes = []string{"Stylesheet", "Font", "Image", "Media", "Script"}

var (
	scriptTagRE  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// UWLD drives the UWL quick-view lookup on shipuwl.com. The form submits a
// tracking number and navigates to a shipment detail page; numbers the portal
// does not expose publicly bounce to a login form instead.
type UWLD struct {
	cfg config.WorkflowConfig

	// capture fetches the cleaned result markup for a task. Defaults to the
	// live browser flow.
	capture func(ctx context.Context, task models.LookupTask, tab session.Tab) (string, error)
}

// NewUWLD builds the UWL workflow.
func NewUWLD(cfg config.WorkflowConfig) *UWLD {
	u := &UWLD{cfg: cfg}
	u.capture = u.captureLive
	return u
}

// Code implements Workflow.
func (u *UWLD) Code() string { return uwldCode }

// Run implements Workflow. A login-walled number resolves to the no-data
// marker with success status: the portal answered, it just keeps that
// shipment private.
func (u *UWLD) Run(ctx context.Context, task models.LookupTask, tab session.Tab) (any, error) {
	cleaned, err := u.capture(ctx, task, tab)
	if err != nil {
		return nil, err
	}

	if loginWallPresent(cleaned, task.TrackingNumber) {
		slog.Info("uwld: shipment is behind the login wall", "trackingNumber", task.TrackingNumber)
		return models.NoDataPublished(), nil
	}

	return extract.ParseShipmentPage(cleaned), nil
}

// captureLive runs the quick-view form in the browser and returns the
// script-stripped markup of whatever page the submit landed on.
func (u *UWLD) captureLive(ctx context.Context, task models.LookupTask, tab session.Tab) (string, error) {
	page, err := pageOf(tab)
	if err != nil {
		return "", err
	}

	router := browser.BlockRequests(page, uwldBlockedTypes, nil)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	if err := page.Timeout(u.cfg.NavigationTimeout).Navigate(uwldURL); err != nil {
		return "", models.NewTrackError(models.ErrCodeNavigationTimeout, "UWL portal did not load", err)
	}

	input, err := browser.Element(page, "#ShipmentQuickview", u.cfg.ControlTimeout)
	if err != nil {
		return "", models.NewTrackError(models.ErrCodeControlTimeout, "quick-view input never appeared", err)
	}
	if err := input.Input(task.TrackingNumber); err != nil {
		return "", models.NewTrackError(models.ErrCodeControlTimeout, "quick-view input rejected text", err)
	}

	submit, err := browser.Element(page, `button.btn.btn-warning[type="submit"]`, u.cfg.ControlTimeout)
	if err != nil {
		return "", models.NewTrackError(models.ErrCodeControlTimeout, "quick-view submit never appeared", err)
	}

	// Register the navigation wait before clicking; the submit triggers a
	// full page load and the race is otherwise lost.
	before := currentURL(page)
	wait := page.Timeout(u.cfg.NavigationTimeout).WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", models.NewTrackError(models.ErrCodeControlTimeout, "quick-view submit click failed", err)
	}
	// The wait func surfaces no error; a timed-out wait returns with the
	// search page still loaded, so the URL has to confirm the navigation.
	wait()
	if err := verifyNavigated(before, currentURL(page)); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", models.NewTrackError(models.ErrCodeExtractionFailed, "result page could not be captured", err)
	}

	return stripScripts(html), nil
}

// currentURL reads the page's URL, empty when the target is unreachable.
func currentURL(page *rod.Page) string {
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// verifyNavigated fails when the submit never left the search page.
func verifyNavigated(before, after string) error {
	if after == "" || after == before {
		return models.NewTrackError(models.ErrCodeNavigationTimeout, "quick-view submit never left the search page", nil)
	}
	return nil
}

// stripScripts drops script tags and collapses whitespace so the markup is
// stable enough to both match against and keep as the raw payload.
func stripScripts(html string) string {
	cleaned := scriptTagRE.ReplaceAllString(html, "")
	cleaned = whitespaceRE.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// loginWallPresent reports whether the portal bounced the quick-view to its
// login form instead of the shipment page.
func loginWallPresent(html, trackingNumber string) bool {
	return strings.Contains(html, `action="./Login.aspx?QuickViewNumber=`+trackingNumber+`"`)
}
