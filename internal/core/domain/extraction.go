package domain

// ShipmentFields lists the keys of a ShipmentRecord in their canonical order.
var ShipmentFields = []string{
	"shipment_id",
	"shipper",
	"consignee",
	"pickup_datetime",
	"delivery_datetime",
	"equipment_type",
	"mode",
	"rate",
	"currency",
	"weight",
	"carrier_name",
}

// ShipmentRecord is the fixed-schema record extracted from a logistics document.
// Every field is nullable; a nil field means the value was not found.
type ShipmentRecord struct {
	ShipmentID       *string `json:"shipment_id"`
	Shipper          *string `json:"shipper"`
	Consignee        *string `json:"consignee"`
	PickupDatetime   *string `json:"pickup_datetime"`
	DeliveryDatetime *string `json:"delivery_datetime"`
	EquipmentType    *string `json:"equipment_type"`
	Mode             *string `json:"mode"`
	Rate             *string `json:"rate"`
	Currency         *string `json:"currency"`
	Weight           *string `json:"weight"`
	CarrierName      *string `json:"carrier_name"`
}

// Field returns a pointer to the field slot for the given key, or nil when the
// key is not part of the schema.
func (r *ShipmentRecord) Field(key string) **string {
	switch key {
	case "shipment_id":
		return &r.ShipmentID
	case "shipper":
		return &r.Shipper
	case "consignee":
		return &r.Consignee
	case "pickup_datetime":
		return &r.PickupDatetime
	case "delivery_datetime":
		return &r.DeliveryDatetime
	case "equipment_type":
		return &r.EquipmentType
	case "mode":
		return &r.Mode
	case "rate":
		return &r.Rate
	case "currency":
		return &r.Currency
	case "weight":
		return &r.Weight
	case "carrier_name":
		return &r.CarrierName
	default:
		return nil
	}
}

// Get returns the value for key and whether it is set.
func (r *ShipmentRecord) Get(key string) (string, bool) {
	slot := r.Field(key)
	if slot == nil || *slot == nil {
		return "", false
	}
	return **slot, true
}

// Found returns the number of non-null fields.
func (r *ShipmentRecord) Found() int {
	n := 0
	for _, key := range ShipmentFields {
		if _, ok := r.Get(key); ok {
			n++
		}
	}
	return n
}

// ExtractionResult pairs a record with the document it came from.
type ExtractionResult struct {
	DocumentID string         `json:"document_id"`
	Data       ShipmentRecord `json:"data"`
	Confidence float64        `json:"confidence"`
}
