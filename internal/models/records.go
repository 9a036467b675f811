// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package models

// RecordKind identifies one of the raw record families the engine consumes.
type RecordKind string

const (
	KindRevenue     RecordKind = "revenue"
	KindAcquisition RecordKind = "acquisition"
	KindEngagement  RecordKind = "engagement"
	KindRetention   RecordKind = "retention"
	KindFunnel      RecordKind = "funnel"
)

// AllRecordKinds lists record kinds in the order they are loaded.
var AllRecordKinds = []RecordKind{KindRevenue, KindAcquisition, KindEngagement, KindRetention, KindFunnel}

// RevenueSource is the origin of a revenue event.
type RevenueSource string

const (
	RevenueSubscription RevenueSource = "subscription"
	RevenueOneTime      RevenueSource = "one_time"
	RevenueUpgrade      RevenueSource = "upgrade"
	RevenueAddon        RevenueSource = "addon"
)

// IsRecurring reports whether the source contributes to monthly recurring revenue.
func (s RevenueSource) IsRecurring() bool {
	return s == RevenueSubscription || s == RevenueUpgrade || s == RevenueAddon
}

// Plan is the billing plan a revenue event was charged on.
type Plan string

const (
	PlanTrial        Plan = "trial"
	PlanBasic        Plan = "basic"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// AcquisitionSource is the channel a new user arrived through.
type AcquisitionSource string

const (
	AcquisitionOrganic  AcquisitionSource = "organic"
	AcquisitionPaid     AcquisitionSource = "paid"
	AcquisitionReferral AcquisitionSource = "referral"
	AcquisitionSocial   AcquisitionSource = "social"
	AcquisitionDirect   AcquisitionSource = "direct"
)

// MetricSample is a single timestamped numeric observation.
// Category is optional; an empty string means absent.
type MetricSample struct {
	Date     string  `json:"date" validate:"required,calendardate"`
	Value    float64 `json:"value" validate:"finite"`
	Category string  `json:"category,omitempty"`
}

// Counts fit the INTEGER columns of the record store. Amounts and durations
// are capped at 1e12 so sums over a refresh stay representable.

// RevenueRecord is one revenue event.
type RevenueRecord struct {
	Date   string        `json:"date" validate:"required,calendardate"`
	Amount float64       `json:"amount" validate:"finite,gte=0,lte=1e12"`
	Source RevenueSource `json:"source" validate:"required,oneof=subscription one_time upgrade addon"`
	Plan   Plan          `json:"plan" validate:"required,oneof=trial basic professional enterprise"`
}

// AcquisitionRecord counts users acquired through one channel on one date.
type AcquisitionRecord struct {
	Date     string            `json:"date" validate:"required,calendardate"`
	NewUsers int               `json:"newUsers" validate:"gte=0,lte=2147483647"`
	Source   AcquisitionSource `json:"source" validate:"required,oneof=organic paid referral social direct"`
}

// EngagementRecord is a per-user engagement sample.
type EngagementRecord struct {
	UserID                 string  `json:"userId" validate:"required"`
	Date                   string  `json:"date" validate:"required,calendardate"`
	AverageSessionDuration float64 `json:"averageSessionDuration" validate:"finite,gte=0,lte=1e12"`
}

// RetentionRecord holds the active/total user counts of one cohort at one period.
// Period is measured in weeks since signup.
//
// ActiveUsers is not bounded by TotalUsers here: a record with more active than
// total users is kept and reported as a data-quality warning by the engine.
type RetentionRecord struct {
	Cohort      string `json:"cohort" validate:"required,cohortmonth"`
	Period      int    `json:"period" validate:"gte=0,lte=2147483647"`
	TotalUsers  int    `json:"totalUsers" validate:"gte=0,lte=2147483647"`
	ActiveUsers int    `json:"activeUsers" validate:"gte=0,lte=2147483647"`
}

// ConversionStage is one step of a funnel. Users is expected to be
// non-increasing across a funnel's stages.
type ConversionStage struct {
	Name  string `json:"name" validate:"required"`
	Users int    `json:"users" validate:"gte=0,lte=2147483647"`
}

// Funnel is a named, ordered sequence of conversion stages.
type Funnel struct {
	Name   string            `json:"name" validate:"required"`
	Stages []ConversionStage `json:"stages" validate:"dive"`
}

// KPITarget is a configured target for one dashboard KPI.
// ID must name a metric known to the composer.
type KPITarget struct {
	ID       string  `json:"id" koanf:"id" validate:"required"`
	Category string  `json:"category" koanf:"category"`
	Target   float64 `json:"target" koanf:"target" validate:"finite"`
	Unit     string  `json:"unit" koanf:"unit"`
}

// RecordSet bundles every record family loaded for one refresh cycle.
type RecordSet struct {
	Revenue     []RevenueRecord     `json:"revenue"`
	Acquisition []AcquisitionRecord `json:"acquisition"`
	Engagement  []EngagementRecord  `json:"engagement"`
	Retention   []RetentionRecord   `json:"retention"`
	Funnels     []Funnel            `json:"funnels"`
}

// Len returns the total number of records across all families.
func (rs *RecordSet) Len() int {
	n := len(rs.Revenue) + len(rs.Acquisition) + len(rs.Engagement) + len(rs.Retention)
	for _, f := range rs.Funnels {
		n += len(f.Stages)
	}
	return n
}
