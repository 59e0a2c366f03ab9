package entity

import (
	"github.com/google/uuid"
)

type OperationAction string

const (
	ActionCreate      OperationAction = "create"
	ActionUpdate      OperationAction = "update"
	ActionDelete      OperationAction = "delete"
	ActionImport      OperationAction = "import"
	ActionImageUpload OperationAction = "image_upload"
	ActionImageSync   OperationAction = "image_sync"
	ActionLogin       OperationAction = "login"
	ActionRoleChange  OperationAction = "role_change"
)

type ResourceType string

const (
	ResourceMovie  ResourceType = "movie"
	ResourceTV     ResourceType = "tv"
	ResourceActor  ResourceType = "actor"
	ResourceReview ResourceType = "review"
	ResourceUser   ResourceType = "user"
	ResourceImage  ResourceType = "image"
)

// OperationLog keeps a snapshot of who touched what, so rows outlive both
// the resource and the acting user.
type OperationLog struct {
	BaseSimple
	UserID       *uuid.UUID      `db:"user_id"`
	Username     string          `db:"username"`
	Action       OperationAction `db:"action"`
	ResourceType ResourceType    `db:"resource_type"`
	ResourceID   *uuid.UUID      `db:"resource_id"`
	ResourceName *string         `db:"resource_name"`
	Details      map[string]any  `db:"details"`
	IPAddress    *string         `db:"ip_address"`
}
