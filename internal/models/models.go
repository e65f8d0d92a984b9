package models

import (
	"time"
)

// Participant represents a registered giveaway entrant
type Participant struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`  // 549 + 10 digits
	Handle    string `json:"handle"` // Instagram, lower-cased
	Region    string `json:"region"`
}

// Winner is the single outcome of the draw
type Winner struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	Handle        string    `json:"handle"` // copy of the participant handle at draw time
	DrawnAt       time.Time `json:"drawn_at"`
}

// RegionCount is one bar of the distribution chart
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Stats is the JSON payload served to the chart
type Stats struct {
	Total   int            `json:"total"`
	Regions map[string]int `json:"regions"`
}

// Regions lists the provinces offered by the registration form, in display order.
var Regions = []string{
	"Buenos Aires", "CABA", "Córdoba", "Santa Fe", "Mendoza",
	"Tucumán", "Salta", "Jujuy", "Chaco", "Corrientes", "Misiones",
	"Entre Ríos", "San Juan", "San Luis", "La Rioja", "Catamarca",
	"Santiago del Estero", "Formosa", "Neuquén", "Río Negro",
	"Chubut", "Santa Cruz", "Tierra del Fuego",
}
