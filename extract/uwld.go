package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/seatrack/models"
)

// ParseShipmentPage parses the UWL quick-view result page into its
// canonical shape. Every section is independent: an absent table or a
// "No records found" placeholder yields an empty slice for that section
// without touching the others.
func ParseShipmentPage(html string) *models.UWLDShipment {
	parsed := models.NewUWLDShipment()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("extract: uwld page failed to parse", "error", err)
		return parsed
	}

	parsed.MetaData = models.UWLDMetaData{
		Bill:        elementText(doc, "#HouseBill"),
		Origin:      elementText(doc, "#Origin"),
		ETD:         elementText(doc, "#ETD"),
		Destination: elementText(doc, "#Destination"),
		ETA:         elementText(doc, "#ETA"),
		ShippersRef: elementText(doc, "#ClientShipperRefData"),
		OrderRef:    elementText(doc, "#Ztextlabel1"),
		ReleaseType: elementText(doc, "#ReleaseTypeCodeLookupLabel"),
		OnBoard:     elementText(doc, "#OnBoardCodeLookupLabel"),
	}

	// Transport grid → route legs.
	doc.Find("#TransportGridController_TransportGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			parsed.Route = append(parsed.Route, models.UWLDLeg{
				LegNumber:         title(row, "td:nth-child(1) span"),
				Mode:              title(row, "td:nth-child(2) span"),
				Type:              title(row, "td:nth-child(3) span"),
				Vessel:            title(row, "td:nth-child(6) span"),
				Voyage:            title(row, "td:nth-child(7) span"),
				LoadLocation:      title(row, "td:nth-child(8) span"),
				DischargeLocation: title(row, "td:nth-child(9) span"),
				DepartureDate:     strings.TrimSpace(row.Find("td:nth-child(10) div span").Text()),
				ArrivalDate:       strings.TrimSpace(row.Find("td:nth-child(11) div span").Text()),
				Status:            title(row, "td:nth-child(12) span"),
				Carrier:           title(row, "td:nth-child(13) span"),
			})
		})

	// Container grid, keyed by container number so a later row for the same
	// container replaces the earlier one.
	containerIndex := make(map[string]int)
	doc.Find("#ContainerGridController_ContainerGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			number := strings.TrimSpace(row.Find("td:nth-child(1) a").Text())
			if number == "" {
				return
			}
			container := models.UWLDContainer{
				ContainerNumber: number,
				Seal:            title(row, "td:nth-child(2) span"),
				ContainerType:   title(row, "td:nth-child(3) span"),
				ContainerMode:   title(row, "td:nth-child(4) span"),
			}
			if idx, ok := containerIndex[number]; ok {
				parsed.ContainersInfo[idx] = container
				return
			}
			containerIndex[number] = len(parsed.ContainersInfo)
			parsed.ContainersInfo = append(parsed.ContainersInfo, container)
		})

	// Pack lines enrich the matching container rows.
	doc.Find("#PackLinesGridController_PackLinesGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			number := strings.TrimSpace(title(row, "td:nth-child(4) span"))
			idx, ok := containerIndex[number]
			if !ok {
				return
			}
			parsed.ContainersInfo[idx].Pieces = strings.TrimSpace(title(row, "td:nth-child(1) span"))
			parsed.ContainersInfo[idx].PackType = strings.TrimSpace(title(row, "td:nth-child(2) span"))
		})

	// Tracking events.
	doc.Find("#TrackingEvents_TrackingEventsPanel_TrackingEventsGridController_TrackingEventsGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			code := title(row, "td:nth-child(1) span")
			if code == "" {
				return
			}
			parsed.Events = append(parsed.Events, models.UWLDEvent{
				EventCode:    code,
				EventTime:    title(row, "td:nth-child(2) span"),
				Description:  title(row, "td:nth-child(3) span"),
				EventDetails: title(row, "td:nth-child(4) span"),
			})
		})

	// Orders. An empty grid renders a single "No records found" row whose
	// first cell is blank, which the orderNumber guard already skips.
	doc.Find("#OrdersGridController_OrdersGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			orderNumber := strings.TrimSpace(row.Find("td:nth-child(1)").Text())
			if orderNumber == "" || orderNumber == "No records found" {
				return
			}
			parsed.Orders = append(parsed.Orders, models.UWLDOrder{
				OrderNumber:   orderNumber,
				TransportMode: strings.TrimSpace(row.Find("td:nth-child(2)").Text()),
				Status:        strings.TrimSpace(row.Find("td:nth-child(3)").Text()),
				OrderDate:     strings.TrimSpace(row.Find("td:nth-child(4)").Text()),
			})
		})

	// Reference data.
	doc.Find("#ReferenceDataGridController_ReferenceDataGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			numberType := title(row, "td:nth-child(2) span")
			if numberType == "" {
				return
			}
			parsed.ReferenceData = append(parsed.ReferenceData, models.UWLDReference{
				Country:         strings.TrimSpace(row.Find("td:nth-child(1) span").Text()),
				NumberType:      numberType,
				Number:          title(row, "td:nth-child(3) span"),
				TypeDescription: title(row, "td:nth-child(4) span"),
			})
		})

	// Customs entries.
	doc.Find("#CustomsEntriesDataGridController_CustomsEntriesDataGrid tr.DetailsCell").
		Each(func(_ int, row *goquery.Selection) {
			referenceNumber := strings.TrimSpace(row.Find("td:nth-child(1)").Text())
			if referenceNumber == "" || referenceNumber == "No records found" {
				return
			}
			parsed.CustomsEntries = append(parsed.CustomsEntries, models.UWLDCustomsEntry{
				ReferenceNumber: referenceNumber,
				EntryNumber:     strings.TrimSpace(row.Find("td:nth-child(2)").Text()),
				MessageStatus:   strings.TrimSpace(row.Find("td:nth-child(3)").Text()),
				EntryAdvice:     strings.TrimSpace(row.Find("td:nth-child(4)").Text()),
			})
		})

	return parsed
}

func elementText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).Text())
}

// title reads the title attribute of the first node matching selector under
// s; the grids render their values as tooltips, not cell text.
func title(s *goquery.Selection, selector string) string {
	v, _ := s.Find(selector).Attr("title")
	return v
}
