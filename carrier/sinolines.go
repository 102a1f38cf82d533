package carrier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/seatrack/browser"
	"github.com/use-agent/seatrack/config"
	"github.com/use-agent/seatrack/extract"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
)

const (
	sinolinesCode = "12IH"
	sinolinesURL  = "https://ebusiness.sinolines.com.cn/snlebusiness/EQUERY/TrackingCargoE.aspx"
)

// sinolinesBlockedTypes lists the sub-resources stripped before navigating
// the Sinolines portal. Scripts stay enabled: the postback machinery is
// server-rendered JavaScript and the whole flow depends on it.
var sinolinesBlockedTypes = []string{"Stylesheet", "Font", "Image", "Media"}

// Sinolines drives the Sinolines e-business tracking portal. The portal is a
// classic ASP.NET WebForms app: every state change is a full postback, search
// mode is a dropdown that reloads the page, and result grids appear only
// after fixed settle delays.
//
// The flow searches by container number first to discover the shipment's
// containers, then switches to bill-of-lading mode and walks each container
// link to collect the route grid, the container summary grid and the
// per-container event grids.
type Sinolines struct {
	cfg config.WorkflowConfig
}

// NewSinolines builds the Sinolines workflow.
func NewSinolines(cfg config.WorkflowConfig) *Sinolines {
	return &Sinolines{cfg: cfg}
}

// Code implements Workflow.
func (s *Sinolines) Code() string { return sinolinesCode }

// Run implements Workflow. The returned raw data always carries whatever was
// extracted before a failure; on fatal errors IsFailed is set alongside the
// error so callers can ship the partial payload in the error envelope.
func (s *Sinolines) Run(ctx context.Context, task models.LookupTask, tab session.Tab) (any, error) {
	raw := &models.SinolinesRawData{}

	page, err := pageOf(tab)
	if err != nil {
		raw.IsFailed = true
		return raw, err
	}

	router := browser.BlockRequests(page, sinolinesBlockedTypes, nil)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	if err := s.navigate(page); err != nil {
		raw.IsFailed = true
		raw.Error = err.Error()
		return raw, models.NewTrackError(models.ErrCodeNavigationTimeout, "Sinolines portal did not load", err)
	}

	routeFragments, detailFragments, eventFragments, runErr := s.collect(ctx, page, task.TrackingNumber, raw)

	raw.CleanedRoute = extract.CleanRoute(routeFragments)
	details := extract.CleanContainerDetails(detailFragments, eventFragments)
	raw.CleanedContainerDetails = &details

	if runErr != nil {
		raw.IsFailed = true
		raw.Error = runErr.Error()
		return raw, runErr
	}
	return raw, nil
}

func (s *Sinolines) navigate(page *rod.Page) error {
	if err := page.Timeout(s.cfg.NavigationTimeout).Navigate(sinolinesURL); err != nil {
		return err
	}
	// Best effort: the portal keeps long-polling trackers open, so a strict
	// load wait can hang past a perfectly usable DOM.
	if err := page.Timeout(s.cfg.NavigationTimeout).WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Warn("sinolines: DOM never settled after navigation", "error", err)
	}
	return nil
}

// collect runs the interaction sequence and returns the captured HTML
// fragments. Errors returned here are fatal to the task; locally recoverable
// steps log and move on.
func (s *Sinolines) collect(ctx context.Context, page *rod.Page, trackingNumber string, raw *models.SinolinesRawData) (routeFragments, detailFragments, eventFragments []string, err error) {
	if _, err = browser.Element(page, "#dl_seltype", s.cfg.ControlTimeout); err != nil {
		return nil, nil, nil, models.NewTrackError(models.ErrCodeControlTimeout, "search mode selector never appeared", err)
	}

	// Phase 1: container-number search to discover the shipment's containers.
	if value, verr := browser.ControlValue(page, "#dl_seltype"); verr != nil || value != "cntrno" {
		if perr := browser.SelectWithPostback(page, "dl_seltype", "cntrno"); perr != nil {
			// The selector may already be in the right mode despite the
			// postback failing; the search below decides.
			slog.Warn("sinolines: switch to container search failed", "error", perr)
		}
		if serr := browser.Sleep(ctx, 2*time.Second); serr != nil {
			return nil, nil, nil, serr
		}
	}

	if err = s.search(ctx, page, "#TbBlno", trackingNumber); err != nil {
		return nil, nil, nil, err
	}

	if _, err = browser.VisibleElement(page, "#CntrStateGridView", s.cfg.ResultTimeout); err != nil {
		return nil, nil, nil, models.NewTrackError(models.ErrCodeExtractionFailed,
			fmt.Sprintf("no tracking data published for %s", trackingNumber), err)
	}

	var containers []string
	if grid := browser.OuterHTML(page, "#CntrStateGridView"); grid == "" {
		raw.Error = "Container table not found"
	} else {
		containers = extract.ContainerNumbers(grid)
	}
	if serr := browser.Sleep(ctx, 3*time.Second); serr != nil {
		return nil, nil, nil, serr
	}

	// Phase 2: switch to bill-of-lading mode so the route grid and the
	// container summary grid render together.
	if _, werr := browser.Element(page, "#dl_seltype", 3*time.Second); werr != nil {
		slog.Warn("sinolines: search mode selector missing after container search", "error", werr)
	}
	if len(containers) > 0 {
		if value, verr := browser.ControlValue(page, "#dl_seltype"); verr != nil || value != "blno" {
			if perr := browser.SelectWithPostback(page, "dl_seltype", "blno"); perr != nil {
				slog.Warn("sinolines: switch to bill search failed", "error", perr)
			}
			if serr := browser.Sleep(ctx, 3*time.Second); serr != nil {
				return nil, nil, nil, serr
			}
		}
		if err = s.recoverBillSearch(ctx, page, containers); err != nil {
			return nil, nil, nil, err
		}
	}

	return s.walkContainerLinks(ctx, page)
}

// search types query into the input at selector and submits it.
func (s *Sinolines) search(ctx context.Context, page *rod.Page, selector, query string) error {
	input, err := browser.Element(page, selector, s.cfg.ControlTimeout)
	if err != nil {
		return models.NewTrackError(models.ErrCodeControlTimeout, "search input never appeared", err)
	}
	if err := browser.ClearAndType(input, query); err != nil {
		return models.NewTrackError(models.ErrCodeControlTimeout, "search input rejected text", err)
	}

	button, err := browser.Element(page, "#BlnoListRetrieveBT", s.cfg.ControlTimeout)
	if err != nil {
		return models.NewTrackError(models.ErrCodeControlTimeout, "search button never appeared", err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return models.NewTrackError(models.ErrCodeControlTimeout, "search button click failed", err)
	}

	return browser.Sleep(ctx, 3*time.Second)
}

// recoverBillSearch re-runs the bill-of-lading search once per discovered
// container number until the bill grid renders. The portal ties shipments to
// any of their containers, so the first container that resolves is enough.
func (s *Sinolines) recoverBillSearch(ctx context.Context, page *rod.Page, containers []string) error {
	for _, containerNo := range containers {
		input, err := browser.Element(page, "#CNTRNOTXT", s.cfg.ControlTimeout)
		if err != nil {
			slog.Warn("sinolines: bill search input missing", "containerNo", containerNo, "error", err)
			continue
		}
		if err := browser.ClearAndType(input, containerNo); err != nil {
			slog.Warn("sinolines: bill search input rejected text", "containerNo", containerNo, "error", err)
			continue
		}
		button, err := browser.Element(page, "#BlnoListRetrieveBT", s.cfg.ControlTimeout)
		if err != nil {
			slog.Warn("sinolines: bill search button missing", "containerNo", containerNo, "error", err)
			continue
		}
		if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Warn("sinolines: bill search click failed", "containerNo", containerNo, "error", err)
			continue
		}
		if err := browser.Sleep(ctx, 2*time.Second); err != nil {
			return err
		}
		if _, err := browser.Element(page, "#BlnoListGridView", s.cfg.ControlTimeout); err == nil {
			return nil
		}
		slog.Warn("sinolines: bill grid did not render, trying next container", "containerNo", containerNo)
	}
	return nil
}

// walkContainerLinks clicks each container link in the summary grid and
// captures the event grid it reveals. The route and detail grids are captured
// once, after the final link, when the page is in its richest state.
func (s *Sinolines) walkContainerLinks(ctx context.Context, page *rod.Page) (routeFragments, detailFragments, eventFragments []string, err error) {
	links, err := page.Elements(`a[id*="ContainerGridView_SelLinkButton_"]`)
	if err != nil {
		slog.Warn("sinolines: container links lookup failed", "error", err)
		return nil, nil, nil, nil
	}

	for i := range links {
		// Click by index through the DOM rather than the stale element
		// handle: each click posts back and replaces the node.
		res, cerr := page.Eval(`(i) => {
			const links = document.querySelectorAll('a[id*="ContainerGridView_SelLinkButton_"]');
			if (!links[i]) throw new Error("container link vanished: " + i);
			links[i].click();
			return links[i].textContent;
		}`, i)
		if cerr != nil {
			slog.Warn("sinolines: container link click failed", "index", i, "error", cerr)
			continue
		}
		slog.Debug("sinolines: container link clicked", "index", i, "containerNo", res.Value.Str())

		if serr := browser.Sleep(ctx, 2*time.Second); serr != nil {
			return routeFragments, detailFragments, eventFragments, serr
		}
		if _, verr := browser.VisibleElement(page, "#CntrStateGridView", s.cfg.ResultTimeout); verr != nil {
			slog.Warn("sinolines: event grid did not render", "index", i, "error", verr)
			eventFragments = append(eventFragments, "")
		} else {
			eventFragments = append(eventFragments, browser.OuterHTML(page, "#CntrStateGridView"))
		}

		if i == len(links)-1 {
			routeFragments = append(routeFragments, browser.OuterHTML(page, "#BlnoListGridView"))
			detailFragments = append(detailFragments, browser.OuterHTML(page, "#ContainerGridView"))
		}
	}

	return routeFragments, detailFragments, eventFragments, nil
}
