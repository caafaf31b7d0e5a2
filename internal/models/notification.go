package models

import (
	"time"
)

// Priority orders dashboard and user-queue notifications.
type Priority string

const (
	PriorityHighest Priority = "Highest"
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
)

// Weight maps a priority to its sort weight; higher sorts first.
func (p Priority) Weight() int {
	switch p {
	case PriorityHighest:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Weight() > 0
}

// Placement is a delivery channel a notification fans out to.
// A single notification may use several at once.
type Placement string

const (
	PlacementPush         Placement = "Push"
	PlacementDashboard    Placement = "Dashboard"
	PlacementUserQueue    Placement = "UserQueue"
	PlacementPrerequisite Placement = "Prerequisite"
)

// AudienceLevel scopes a notification for list queries.
type AudienceLevel string

const (
	AudienceNational   AudienceLevel = "National"
	AudienceBranch     AudienceLevel = "Branch"
	AudienceDivision   AudienceLevel = "Division"
	AudienceProvince   AudienceLevel = "Province"
	AudienceIndividual AudienceLevel = "Individual"
)

// Notification statuses.
const (
	NotificationStatusActive  = "Active"
	NotificationStatusRemoved = "Removed"
)

// Redirection carries client-side deep-linking data.
type Redirection struct {
	ScreenName   string                 `bson:"screenName" json:"screenName"`
	ScreenParams map[string]interface{} `bson:"screenParams,omitempty" json:"screenParams,omitempty"`
}

// Notification is the logical notification record, persisted exactly once
// per send regardless of how many channels fan out from it.
type Notification struct {
	NotificationID  string        `bson:"notificationId" json:"notificationId"`
	Priority        Priority      `bson:"priority,omitempty" json:"priority,omitempty"`
	Placements      []Placement   `bson:"placements" json:"placements"`
	AudienceLevel   AudienceLevel `bson:"audienceLevel,omitempty" json:"audienceLevel,omitempty"`
	Type            string        `bson:"type" json:"type"`
	Origin          string        `bson:"origin" json:"origin"`
	Title           string        `bson:"title" json:"title"`
	Body            string        `bson:"body" json:"body"`
	UserPsIDs       []string      `bson:"userPsIds,omitempty" json:"userPsIds,omitempty"`
	BranchIDs       []string      `bson:"branchIds,omitempty" json:"branchIds,omitempty"`
	DivisionIDs     []string      `bson:"divisionIds,omitempty" json:"divisionIds,omitempty"`
	ProvincialCodes []string      `bson:"provincialCodes,omitempty" json:"provincialCodes,omitempty"`
	ExpiresAt       *time.Time    `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	Redirection     *Redirection  `bson:"redirection,omitempty" json:"redirection,omitempty"`
	IsClearable     *bool         `bson:"isClearable,omitempty" json:"isClearable,omitempty"`
	Status          string        `bson:"status" json:"status"`
	IsDeleted       bool          `bson:"isDeleted" json:"isDeleted"`
	CreatedBy       string        `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// HasPlacement reports whether the notification requested the given channel.
func (n Notification) HasPlacement(p Placement) bool {
	for _, pl := range n.Placements {
		if pl == p {
			return true
		}
	}
	return false
}

// Expired reports whether the notification has an expiry in the past.
// Expired notifications stay retrievable by id but drop out of listings.
func (n Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(now)
}

// SendNotificationRequest is the caller-facing input for SendNotification.
// ExpiresAt is an RFC 3339 string so the orchestrator can reject garbage
// dates before anything is persisted.
type SendNotificationRequest struct {
	NotificationID  string                 `json:"notificationId,omitempty"`
	Priority        Priority               `json:"priority,omitempty"`
	Placements      []Placement            `json:"placements"`
	AudienceLevel   AudienceLevel          `json:"audienceLevel,omitempty"`
	Type            string                 `json:"type"`
	Origin          string                 `json:"origin"`
	Title           string                 `json:"title"`
	Body            string                 `json:"body"`
	UserPsIDs       []string               `json:"userPsIds,omitempty"`
	BranchIDs       []string               `json:"branchIds,omitempty"`
	DivisionIDs     []string               `json:"divisionIds,omitempty"`
	ProvincialCodes []string               `json:"provincialCodes,omitempty"`
	ExpiresAt       string                 `json:"expiresAt,omitempty"`
	RedirectScreen  string                 `json:"redirectScreen,omitempty"`
	RedirectParams  map[string]interface{} `json:"redirectParams,omitempty"`
	IsClearable     *bool                  `json:"isClearable,omitempty"`
	CreatedBy       string                 `json:"createdBy,omitempty"`
}

// HasPlacement reports whether the request asked for the given channel.
func (r SendNotificationRequest) HasPlacement(p Placement) bool {
	for _, pl := range r.Placements {
		if pl == p {
			return true
		}
	}
	return false
}

// NotificationFilters narrows the audience-filtered list query. The caller's
// branch/division/province membership drives the visibility check; a "*"
// entry matches the corresponding tier universally.
type NotificationFilters struct {
	BranchIDs       []string `json:"branchIds,omitempty"`
	DivisionIDs     []string `json:"divisionIds,omitempty"`
	ProvincialCodes []string `json:"provincialCodes,omitempty"`
	Search          string   `json:"search,omitempty"`
}

// QueryOptions carries paging and sorting for list queries.
type QueryOptions struct {
	Skip      int64  `json:"skip,omitempty"`
	Limit     int64  `json:"limit,omitempty"`
	SortField string `json:"sortField,omitempty"`
	SortOrder int    `json:"sortOrder,omitempty"` // 1 ascending, -1 descending
}
