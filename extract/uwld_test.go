package extract

import "testing"

const uwldFixture = `<html><body>
<span id="HouseBill">SHSE03241473</span>
<span id="Origin">Shanghai</span>
<span id="ETD">15-Mar-24</span>
<span id="Destination">Seattle</span>
<span id="ETA">02-Apr-24</span>
<span id="ClientShipperRefData">PO-8812</span>
<span id="Ztextlabel1">ORD-4411</span>
<span id="ReleaseTypeCodeLookupLabel">Express Release</span>
<span id="OnBoardCodeLookupLabel">Shipped</span>

<table id="TransportGridController_TransportGrid">
	<tr class="HeaderCell"><td>Leg</td></tr>
	<tr class="DetailsCell">
		<td><span title="1">1</span></td>
		<td><span title="SEA">SEA</span></td>
		<td><span title="Main">Main</span></td>
		<td><span title="x">x</span></td>
		<td><span title="x">x</span></td>
		<td><span title="EVER GIVEN">EVER GIVEN</span></td>
		<td><span title="042E">042E</span></td>
		<td><span title="Shanghai">Shanghai</span></td>
		<td><span title="Seattle">Seattle</span></td>
		<td><div><span>15-Mar-24</span></div></td>
		<td><div><span>02-Apr-24</span></div></td>
		<td><span title="In Transit">In Transit</span></td>
		<td><span title="EGLV">EGLV</span></td>
	</tr>
</table>

<table id="ContainerGridController_ContainerGrid">
	<tr class="DetailsCell">
		<td><a href="#">TEMU1234567</a></td>
		<td><span title="SEAL9001">SEAL9001</span></td>
		<td><span title="40HC">40HC</span></td>
		<td><span title="FCL">FCL</span></td>
	</tr>
	<tr class="DetailsCell">
		<td><a href="#">TEMU1234567</a></td>
		<td><span title="SEAL9002">SEAL9002</span></td>
		<td><span title="40HC">40HC</span></td>
		<td><span title="FCL">FCL</span></td>
	</tr>
	<tr class="DetailsCell">
		<td><a href="#"></a></td>
	</tr>
</table>

<table id="PackLinesGridController_PackLinesGrid">
	<tr class="DetailsCell">
		<td><span title="120">120</span></td>
		<td><span title="CARTONS">CARTONS</span></td>
		<td><span title="x">x</span></td>
		<td><span title="TEMU1234567">TEMU1234567</span></td>
	</tr>
	<tr class="DetailsCell">
		<td><span title="5">5</span></td>
		<td><span title="PALLETS">PALLETS</span></td>
		<td><span title="x">x</span></td>
		<td><span title="NOTINGRID00">NOTINGRID00</span></td>
	</tr>
</table>

<table id="TrackingEvents_TrackingEventsPanel_TrackingEventsGridController_TrackingEventsGrid">
	<tr class="DetailsCell">
		<td><span title="DEP">DEP</span></td>
		<td><span title="15-Mar-24 18:00">15-Mar-24 18:00</span></td>
		<td><span title="Vessel departed">Vessel departed</span></td>
		<td><span title="Shanghai">Shanghai</span></td>
	</tr>
	<tr class="DetailsCell">
		<td><span title="">x</span></td>
	</tr>
</table>

<table id="OrdersGridController_OrdersGrid">
	<tr class="DetailsCell"><td>No records found</td></tr>
</table>

<table id="ReferenceDataGridController_ReferenceDataGrid">
	<tr class="DetailsCell">
		<td><span>US</span></td>
		<td><span title="ISF">ISF</span></td>
		<td><span title="ISF-77120">ISF-77120</span></td>
		<td><span title="Importer Security Filing">Importer Security Filing</span></td>
	</tr>
</table>

<table id="CustomsEntriesDataGridController_CustomsEntriesDataGrid">
	<tr class="DetailsCell">
		<td>REF-100</td>
		<td>ENT-555</td>
		<td>Accepted</td>
		<td>Release granted</td>
	</tr>
</table>
</body></html>`

func TestParseShipmentPage(t *testing.T) {
	shipment := ParseShipmentPage(uwldFixture)

	meta := shipment.MetaData
	if meta.Bill != "SHSE03241473" || meta.Origin != "Shanghai" || meta.Destination != "Seattle" {
		t.Errorf("unexpected metaData: %+v", meta)
	}
	if meta.ETD != "15-Mar-24" || meta.ETA != "02-Apr-24" {
		t.Errorf("unexpected dates: %+v", meta)
	}
	if meta.ShippersRef != "PO-8812" || meta.OrderRef != "ORD-4411" {
		t.Errorf("unexpected refs: %+v", meta)
	}
	if meta.ReleaseType != "Express Release" || meta.OnBoard != "Shipped" {
		t.Errorf("unexpected release fields: %+v", meta)
	}

	if len(shipment.Route) != 1 {
		t.Fatalf("expected 1 route leg, got %d", len(shipment.Route))
	}
	leg := shipment.Route[0]
	if leg.Vessel != "EVER GIVEN" || leg.Voyage != "042E" {
		t.Errorf("unexpected vessel info: %+v", leg)
	}
	if leg.LoadLocation != "Shanghai" || leg.DischargeLocation != "Seattle" {
		t.Errorf("unexpected locations: %+v", leg)
	}
	if leg.DepartureDate != "15-Mar-24" || leg.ArrivalDate != "02-Apr-24" {
		t.Errorf("unexpected leg dates: %+v", leg)
	}

	if len(shipment.ContainersInfo) != 1 {
		t.Fatalf("duplicate container rows must collapse to one, got %d", len(shipment.ContainersInfo))
	}
	container := shipment.ContainersInfo[0]
	if container.ContainerNumber != "TEMU1234567" {
		t.Errorf("unexpected container: %+v", container)
	}
	if container.Seal != "SEAL9002" {
		t.Errorf("later row should replace the earlier one, got seal %q", container.Seal)
	}
	if container.Pieces != "120" || container.PackType != "CARTONS" {
		t.Errorf("pack line not merged: %+v", container)
	}

	if len(shipment.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(shipment.Events))
	}
	if shipment.Events[0].EventCode != "DEP" || shipment.Events[0].Description != "Vessel departed" {
		t.Errorf("unexpected event: %+v", shipment.Events[0])
	}

	if len(shipment.Orders) != 0 {
		t.Errorf("placeholder orders row must be skipped, got %v", shipment.Orders)
	}
	if len(shipment.ReferenceData) != 1 || shipment.ReferenceData[0].NumberType != "ISF" {
		t.Errorf("unexpected referenceData: %v", shipment.ReferenceData)
	}
	if len(shipment.CustomsEntries) != 1 || shipment.CustomsEntries[0].EntryNumber != "ENT-555" {
		t.Errorf("unexpected customsEntries: %v", shipment.CustomsEntries)
	}
}

func TestParseShipmentPageEmpty(t *testing.T) {
	shipment := ParseShipmentPage("<html><body><p>nothing here</p></body></html>")

	if shipment.Route == nil || shipment.ContainersInfo == nil || shipment.Events == nil ||
		shipment.Orders == nil || shipment.ReferenceData == nil || shipment.CustomsEntries == nil {
		t.Error("sections must be empty slices, not nil")
	}
	if len(shipment.Route) != 0 || len(shipment.ContainersInfo) != 0 {
		t.Errorf("unexpected content: %+v", shipment)
	}
}
