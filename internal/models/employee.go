package models

import "time"

// Employee is the slice of the user store this core reads and writes:
// identity, scoping membership, registered device endpoints, and the
// denormalized top-alerts list of outstanding notification ids.
type Employee struct {
	PsID            string    `bson:"psId" json:"psId"`
	DisplayName     string    `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Email           string    `bson:"email,omitempty" json:"email,omitempty"`
	JobLevel        int       `bson:"jobLevel,omitempty" json:"jobLevel,omitempty"`
	BranchIDs       []string  `bson:"branchIds,omitempty" json:"branchIds,omitempty"`
	DivisionIDs     []string  `bson:"divisionIds,omitempty" json:"divisionIds,omitempty"`
	ProvincialCodes []string  `bson:"provincialCodes,omitempty" json:"provincialCodes,omitempty"`
	DeviceTokens    []string  `bson:"deviceTokens,omitempty" json:"deviceTokens,omitempty"`
	TopAlerts       []string  `bson:"topAlerts,omitempty" json:"topAlerts,omitempty"`
	UpdatedAt       time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Branch is a staffing-branch location record, used only to validate
// branch-targeted sends.
type Branch struct {
	BranchID   string `bson:"branchId" json:"branchId"`
	BranchName string `bson:"branchName,omitempty" json:"branchName,omitempty"`
	DivisionID string `bson:"divisionId,omitempty" json:"divisionId,omitempty"`
}

// UserQueueEntry is one per-recipient queue row written for Dashboard and
// UserQueue placements.
type UserQueueEntry struct {
	EntryID        string    `bson:"entryId" json:"entryId"`
	NotificationID string    `bson:"notificationId" json:"notificationId"`
	UserPsID       string    `bson:"userPsId" json:"userPsId"`
	Placement      Placement `bson:"placement" json:"placement"`
	Priority       Priority  `bson:"priority,omitempty" json:"priority,omitempty"`
	Status         string    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// Prerequisite is an onboarding gating item created when a notification
// requests the Prerequisite placement.
type Prerequisite struct {
	PrerequisiteID string    `bson:"prerequisiteId" json:"prerequisiteId"`
	NotificationID string    `bson:"notificationId" json:"notificationId"`
	Title          string    `bson:"title" json:"title"`
	Body           string    `bson:"body" json:"body"`
	UserPsIDs      []string  `bson:"userPsIds,omitempty" json:"userPsIds,omitempty"`
	BranchIDs      []string  `bson:"branchIds,omitempty" json:"branchIds,omitempty"`
	Status         string    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
