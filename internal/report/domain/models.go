package domain

import (
	"github.com/healthdeck/healthdeck/internal/threshold"
)

// Document is the fully assembled report for one customer month: everything
// a renderer needs, nothing about how to draw it.
type Document struct {
	Title        TitleSection        `json:"title"`
	Availability AvailabilitySection `json:"availability"`
	Licenses     LicensesSection     `json:"licenses"`
	Storage      StorageSection      `json:"storage"`
	Tickets      TicketsSection      `json:"tickets"`
}

type TitleSection struct {
	CustomerName string `json:"customer_name"`
	Month        string `json:"month"`
	CSMName      string `json:"csm_name"`
}

// Series keeps chart series ordered the way they should render.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Chart is a category chart over the report window, months ascending.
type Chart struct {
	Months []string `json:"months"`
	Series []Series `json:"series"`
}

type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type AvailabilitySection struct {
	ActualValue string `json:"actual_value"`
	TargetValue string `json:"target_value"`

	Classification threshold.Classification `json:"classification"`
	IndicatorColor threshold.RGB            `json:"indicator_color"`
	CircleColor    threshold.RGB            `json:"circle_color"`

	Chart Chart    `json:"chart"`
	Notes []string `json:"notes"`
}

type LicensesSection struct {
	Table Table `json:"table"`

	Classification threshold.Classification `json:"classification"`
	IndicatorColor threshold.RGB            `json:"indicator_color"`
	CircleColor    threshold.RGB            `json:"circle_color"`

	Chart Chart    `json:"chart"`
	Notes []string `json:"notes"`
}

type StorageSection struct {
	Table Table `json:"table"`

	Classification threshold.Classification `json:"classification"`
	IndicatorColor threshold.RGB            `json:"indicator_color"`
	CircleColor    threshold.RGB            `json:"circle_color"`

	Chart Chart    `json:"chart"`
	Notes []string `json:"notes"`
}

// TicketsSection carries no classification; the case slide renders plain.
type TicketsSection struct {
	Table     Table `json:"table"`
	Chart     Chart `json:"chart"`
	OpenCases int   `json:"open_cases"`
}
