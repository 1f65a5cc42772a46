package models

// Service is an optional day-rated add-on for a reservation.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	DayRate     int64  `json:"day_rate" yaml:"day_rate"`
}

// ServiceCatalog resolves service ids to their day rates.
type ServiceCatalog map[string]Service

// Rate returns the day rate for a service id, zero for unknown ids.
func (c ServiceCatalog) Rate(id string) int64 {
	return c[id].DayRate
}

// Has reports whether the catalog knows the service id.
func (c ServiceCatalog) Has(id string) bool {
	_, ok := c[id]
	return ok
}
