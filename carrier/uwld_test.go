package carrier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/seatrack/config"
	"github.com/use-agent/seatrack/models"
	"github.com/use-agent/seatrack/session"
)

// nopTab satisfies session.Tab without a browser behind it.
type nopTab struct{}

func (t *nopTab) Activate() error { return nil }
func (t *nopTab) Close() error    { return nil }
func (t *nopTab) Closed() bool    { return false }

func workflowTestConfig() config.WorkflowConfig {
	return config.WorkflowConfig{
		NavigationTimeout: time.Second,
		ControlTimeout:    time.Second,
		ResultTimeout:     time.Second,
	}
}

func TestStripScriptsRemovesScriptTags(t *testing.T) {
	html := `<html><head><SCRIPT src="a.js"></SCRIPT></head>
	<body><div>kept</div><script>
		var multi = "line";
	</script><p>also kept</p></body></html>`

	cleaned := stripScripts(html)
	if strings.Contains(strings.ToLower(cleaned), "<script") {
		t.Errorf("script tags survived: %q", cleaned)
	}
	if !strings.Contains(cleaned, "<div>kept</div>") {
		t.Errorf("content was lost: %q", cleaned)
	}
	if !strings.Contains(cleaned, "<p>also kept</p>") {
		t.Errorf("content after a script was lost: %q", cleaned)
	}
}

func TestStripScriptsCollapsesWhitespace(t *testing.T) {
	cleaned := stripScripts("  <div>\n\t a   b </div>  ")
	if cleaned != "<div> a b </div>" {
		t.Errorf("unexpected cleaned markup: %q", cleaned)
	}
}

func TestLoginWallPresent(t *testing.T) {
	walled := `<form method="post" action="./Login.aspx?QuickViewNumber=SHSE03241473">`
	if !loginWallPresent(walled, "SHSE03241473") {
		t.Error("expected login wall to be detected")
	}
	if loginWallPresent(walled, "OTHER123") {
		t.Error("login wall matched a different tracking number")
	}
	if loginWallPresent(`<div id="HouseBill">SHSE03241473</div>`, "SHSE03241473") {
		t.Error("shipment page misread as a login wall")
	}
}

func TestVerifyNavigated(t *testing.T) {
	if err := verifyNavigated("https://www.shipuwl.com/ocean-freight/", "https://www.shipuwl.com/Shipment.aspx?n=1"); err != nil {
		t.Fatalf("changed URL should pass: %v", err)
	}

	err := verifyNavigated("https://www.shipuwl.com/ocean-freight/", "https://www.shipuwl.com/ocean-freight/")
	var trackErr *models.TrackError
	if !errors.As(err, &trackErr) {
		t.Fatalf("expected a TrackError for an unchanged URL, got %v", err)
	}
	if trackErr.Code != models.ErrCodeNavigationTimeout {
		t.Errorf("expected %s, got %s", models.ErrCodeNavigationTimeout, trackErr.Code)
	}

	if err := verifyNavigated("https://www.shipuwl.com/ocean-freight/", ""); err == nil {
		t.Error("empty after-URL should fail")
	}
}

func TestUWLDRunLoginWallShortCircuits(t *testing.T) {
	u := NewUWLD(workflowTestConfig())
	u.capture = func(context.Context, models.LookupTask, session.Tab) (string, error) {
		return `<form method="post" action="./Login.aspx?QuickViewNumber=SHSE03241473">`, nil
	}

	got, err := u.Run(context.Background(), models.LookupTask{TrackingNumber: "SHSE03241473", CarrierCode: "UWLD"}, &nopTab{})
	if err != nil {
		t.Fatalf("login wall must not be an error: %v", err)
	}
	marker, ok := got.(models.NoDataMarker)
	if !ok {
		t.Fatalf("expected a no-data marker, got %T", got)
	}
	if marker.Message != models.MsgNoDataOnSite || !marker.IsNoDataFoundOnSite {
		t.Errorf("unexpected marker: %+v", marker)
	}
}

func TestUWLDRunParsesShipmentPage(t *testing.T) {
	u := NewUWLD(workflowTestConfig())
	u.capture = func(context.Context, models.LookupTask, session.Tab) (string, error) {
		return `<html><body><div id="HouseBill">SHSE03241473</div><div id="Origin">Shanghai</div></body></html>`, nil
	}

	got, err := u.Run(context.Background(), models.LookupTask{TrackingNumber: "SHSE03241473", CarrierCode: "UWLD"}, &nopTab{})
	if err != nil {
		t.Fatal(err)
	}
	shipment, ok := got.(*models.UWLDShipment)
	if !ok {
		t.Fatalf("expected a parsed shipment, got %T", got)
	}
	if shipment.MetaData.Bill != "SHSE03241473" {
		t.Errorf("bill not parsed: %+v", shipment.MetaData)
	}
	if shipment.MetaData.Origin != "Shanghai" {
		t.Errorf("origin not parsed: %+v", shipment.MetaData)
	}
}

func TestUWLDRunCaptureErrorPropagates(t *testing.T) {
	u := NewUWLD(workflowTestConfig())
	want := models.NewTrackError(models.ErrCodeNavigationTimeout, "quick-view submit never left the search page", nil)
	u.capture = func(context.Context, models.LookupTask, session.Tab) (string, error) {
		return "", want
	}

	got, err := u.Run(context.Background(), models.LookupTask{TrackingNumber: "TN1", CarrierCode: "UWLD"}, &nopTab{})
	if got != nil {
		t.Errorf("expected no payload, got %v", got)
	}
	var trackErr *models.TrackError
	if !errors.As(err, &trackErr) || trackErr.Code != models.ErrCodeNavigationTimeout {
		t.Fatalf("expected the navigation timeout to surface, got %v", err)
	}
}

func TestRegistryLookup(t *testing.T) {
	cfgless := NewUWLD(workflowTestConfig())
	registry := NewRegistry(cfgless)

	if w, ok := registry.Lookup("UWLD"); !ok || w.Code() != "UWLD" {
		t.Fatalf("expected UWLD workflow, got %v %v", w, ok)
	}
	if _, ok := registry.Lookup("NOPE"); ok {
		t.Error("unknown code should not resolve")
	}
}
