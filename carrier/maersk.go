package carrier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/seatrack/browser"
	"github.com/use-agent/seatrack/config"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
	"github.com/ysmood/gson"
)

const (
	maerskCode = "MAEU"
	maerskURL  = "https://www.maersk.com/tracking/"

	// maerskConsumerKey is the public consumer key the tracking page itself
	// sends to the synergy API.
	maerskConsumerKey = "UtMm6JCDcGTnMGErNGvS2B98kt1Wl25H"

	maerskNavigationTimeout = 60 * time.Second
	maerskTelemetryTimeout  = 10 * time.Second
	maerskMaxAttempts       = 3
)

var maerskBlockedTypes = []string{"Stylesheet", "Font", "Image", "Media"}

// maerskBlockedURLs strips the tracking page down to the anti-bot script.
// Only Akamai's sensor needs to run; everything else is weight.
var maerskBlockedURLs = []string{
	"maersk.com/tracking/assets",
	"assets.maerskline.com",
	"googletagmanager.com",
	"maersk.com/static",
}

// maerskFetchJS calls the synergy tracking API from inside the page with a
// fresh Akamai telemetry token, so the request carries the page's own
// fingerprint. A 404 means the sealine has not published data for the number.
// Any other failure resolves to null so the caller can retry with a new
// token.
const maerskFetchJS = `async (trackingNumber, code, userAgent) => {
	try {
		const telemetry = window.bmak.get_telemetry();
		const res = await fetch(
			"https://api.maersk.com/synergy/tracking/" + trackingNumber + "?operator=" + code,
			{
				headers: {
					"akamai-bm-telemetry": telemetry,
					"consumer-key": "` + maerskConsumerKey + `",
					"user-agent": userAgent,
				},
			},
		);
		if (res.status === 404) {
			return { message: "SEALINE_HASNT_PROVIDE_INFO", isNoDataFoundOnSite: true };
		}
		if (!res.ok) {
			return null;
		}
		return await res.json();
	} catch (e) {
		return null;
	}
}`

// Maersk resolves tracking data through the Maersk synergy API. The API sits
// behind Akamai bot detection, so instead of scraping the page the workflow
// loads it just far enough for the sensor script to initialise, then issues
// the API call from page context with a telemetry token minted per attempt.
type Maersk struct {
	cfg       config.WorkflowConfig
	userAgent string
}

// NewMaersk builds the Maersk workflow.
func NewMaersk(cfg config.WorkflowConfig, userAgent string) *Maersk {
	return &Maersk{cfg: cfg, userAgent: userAgent}
}

// Code implements Workflow.
func (m *Maersk) Code() string { return maerskCode }

// Run implements Workflow.
func (m *Maersk) Run(ctx context.Context, task models.LookupTask, tab session.Tab) (any, error) {
	page, err := pageOf(tab)
	if err != nil {
		return &models.MaerskRawData{}, err
	}

	router := browser.BlockRequests(page, maerskBlockedTypes, maerskBlockedURLs)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	return m.resolve(ctx, task, func(ctx context.Context) (gson.JSON, bool, error) {
		return m.fetchOnce(ctx, page, task)
	})
}

// resolve maps the retry outcome onto the payload contract. Exhausting every
// attempt is reported as a success whose payload is the telemetry-unreachable
// marker: the task completed, the carrier's edge just never let a token
// through, and downstream consumers treat that marker as "retry much later"
// rather than as a system fault. A cancelled context stays an error.
func (m *Maersk) resolve(ctx context.Context, task models.LookupTask, attempt func(context.Context) (gson.JSON, bool, error)) (any, error) {
	policy := RetryPolicy{MaxAttempts: maerskMaxAttempts}
	data, err := Attempt(ctx, policy, attempt)
	if err != nil {
		if ctx.Err() != nil {
			return &models.MaerskRawData{}, ctx.Err()
		}
		slog.Warn("maersk: telemetry never yielded a usable token",
			"trackingNumber", task.TrackingNumber, "error", err)
		return &models.MaerskRawData{Data: models.TelemetryUnreachable()}, nil
	}

	return &models.MaerskRawData{Data: data.Val()}, nil
}

// fetchOnce performs one full attempt: fresh navigation, wait for the sensor,
// one API call. Returning done=false with no error asks Attempt for another
// round; tokens go stale fast enough that reusing a loaded page is pointless.
func (m *Maersk) fetchOnce(ctx context.Context, page *rod.Page, task models.LookupTask) (gson.JSON, bool, error) {
	var zero gson.JSON

	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	if err := page.Timeout(maerskNavigationTimeout).Navigate(maerskURL); err != nil {
		return zero, false, models.NewTrackError(models.ErrCodeNavigationTimeout, "Maersk tracking page did not load", err)
	}

	if err := page.Timeout(maerskTelemetryTimeout).Wait(rod.Eval(
		`() => window.bmak && typeof window.bmak.get_telemetry === "function"`,
	)); err != nil {
		return zero, false, fmt.Errorf("telemetry sensor never initialised: %w", err)
	}

	res, err := page.Evaluate(rod.Eval(maerskFetchJS, task.TrackingNumber, task.CarrierCode, m.userAgent).ByPromise())
	if err != nil {
		return zero, false, fmt.Errorf("in-page tracking fetch failed: %w", err)
	}
	if res.Value.Nil() {
		slog.Debug("maersk: attempt rejected, minting a new token", "trackingNumber", task.TrackingNumber)
		return zero, false, nil
	}
	return res.Value, true, nil
}
