package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/seatrack/models"
)

// CleanRoute stitches the route table fragment into a canonical itinerary.
// Returns nil when the fragment is absent or holds no leg rows; the
// carrier publishing nothing is a valid outcome, not a parse failure.
//
// Stitching rule: one leg yields pol/pod only. For N legs, transshipment
// point i (1-based) sits at leg i's origin; its arrival time is the
// previous leg's destination arrival, its departure time is leg i's own
// departure.
func CleanRoute(fragments []string) *models.Route {
	if len(fragments) == 0 || fragments[0] == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragments[0]))
	if err != nil {
		slog.Warn("extract: route fragment failed to parse", "error", err)
		return nil
	}

	rows := doc.Find("#BlnoListGridView tr.griditem, #BlnoListGridView tr.Alternatingback")
	if rows.Length() == 0 {
		return nil
	}

	type leg struct {
		pol models.Departure
		pod models.Arrival
	}
	var legs []leg
	rows.Each(func(_ int, row *goquery.Selection) {
		legs = append(legs, leg{
			pol: models.Departure{
				Location:      strings.TrimSpace(row.Find(`[id*="POLL_"]`).Text()),
				DepartureDate: strings.TrimSpace(row.Find(`[id*="DepartureDTL_"]`).Text()),
			},
			pod: models.Arrival{
				Location:    strings.TrimSpace(row.Find(`[id*="PODL_"]`).Text()),
				ArrivalDate: strings.TrimSpace(row.Find(`[id*="ArrivedDTL_"]`).Text()),
			},
		})
	})

	route := &models.Route{
		Pol: legs[0].pol,
		Pod: legs[len(legs)-1].pod,
	}
	for i := 1; i < len(legs); i++ {
		route.Transshipments = append(route.Transshipments, models.Transshipment{
			Location:      legs[i].pol.Location,
			ArrivalDate:   legs[i-1].pod.ArrivalDate,
			DepartureDate: legs[i].pol.DepartureDate,
		})
	}
	return route
}

// CleanContainerDetails builds the container list from the summary grid and
// attaches each container's events from the fragment collected for it.
// Event fragments correspond to containers positionally (both were walked
// in the same link order). A malformed events fragment empties that one
// container's events, never the whole result.
func CleanContainerDetails(detailFragments, eventFragments []string) models.ContainerDetails {
	details := models.ContainerDetails{ContainerInfo: []models.Container{}}
	if len(detailFragments) == 0 || detailFragments[0] == "" {
		return details
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailFragments[0]))
	if err != nil {
		slog.Warn("extract: container detail fragment failed to parse", "error", err)
		return details
	}

	doc.Find("table.GridViewStyle tbody tr").Each(func(_ int, row *goquery.Selection) {
		inner := row.Find("table > tbody > tr")
		if inner.Length() == 0 {
			return
		}
		cells := inner.Find("td")

		containerNo := strings.TrimSpace(cells.Eq(1).Find("a").Text())
		if containerNo == "" || strings.Contains(containerNo, "container no") {
			return // header row
		}

		sealNo := strings.TrimSpace(cells.Eq(2).Text())
		size := strings.TrimSpace(cells.Eq(3).Find("span").Eq(0).Text())
		typ := strings.TrimSpace(cells.Eq(3).Find("span").Eq(1).Text())
		sizeType := strings.TrimSpace(size + " " + typ)
		if sizeType == "" {
			sizeType = "Unknown"
		}

		details.ContainerInfo = append(details.ContainerInfo, models.Container{
			ContainerNo: containerNo,
			SealNo:      sealNo,
			Size:        sizeType,
			Events:      []models.ContainerEvent{},
		})
	})

	for i := range details.ContainerInfo {
		if i >= len(eventFragments) || eventFragments[i] == "" {
			continue
		}
		events, err := containerEvents(eventFragments[i], details.ContainerInfo[i].ContainerNo)
		if err != nil {
			slog.Warn("extract: container events failed to parse",
				"containerNo", details.ContainerInfo[i].ContainerNo, "error", err)
			continue
		}
		details.ContainerInfo[i].Events = events
	}

	return details
}

// containerEvents parses one per-container event fragment. A row is accepted
// only if its leading sequence field is numeric and its container cell
// matches containerNo exactly; anything else is a header row or belongs to a
// different container and is dropped.
func containerEvents(fragment, containerNo string) ([]models.ContainerEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	events := []models.ContainerEvent{}
	doc.Find("table.GridViewStyle tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")

		seq, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}
		if strings.TrimSpace(cells.Eq(1).Text()) != containerNo {
			return
		}

		events = append(events, models.ContainerEvent{
			No:        seq,
			Status:    strings.TrimSpace(cells.Eq(3).Text()),
			Location:  strings.TrimSpace(cells.Eq(4).Text()),
			CntrState: strings.TrimSpace(cells.Eq(6).Text()),
			Date:      FormatEventTime(cells.Eq(7).Text()),
			Vessel:    strings.TrimSpace(cells.Eq(8).Text()),
		})
	})
	return events, nil
}

// ContainerNumbers discovers the unique container numbers in a summary grid
// by locating the header column whose name mentions "container" or "cntr".
// Returns nil when the grid has no such column.
func ContainerNumbers(fragment string) []string {
	if fragment == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		slog.Warn("extract: container grid failed to parse", "error", err)
		return nil
	}

	col := -1
	doc.Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		name := strings.ToLower(strings.TrimSpace(th.Text()))
		if strings.Contains(name, "container") || strings.Contains(name, "cntr") {
			col = i
			return false
		}
		return true
	})
	if col == -1 {
		return nil
	}

	seen := make(map[string]struct{})
	var numbers []string
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if col >= cells.Length() {
			return
		}
		number := strings.TrimSpace(cells.Eq(col).Text())
		if number == "" {
			return
		}
		if _, ok := seen[number]; ok {
			return
		}
		seen[number] = struct{}{}
		numbers = append(numbers, number)
	})
	return numbers
}
