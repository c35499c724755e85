package domain

import (
	"regexp"
	"time"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectPending is the state between project creation and the first
	// deployment. Pending projects have never served traffic.
	ProjectPending ProjectStatus = "pending"
	// ProjectReady means at least one deployment exists.
	ProjectReady ProjectStatus = "ready"
)

// nameRe matches a DNS label: lowercase alphanumerics and hyphens, no
// leading or trailing hyphen, at most 63 characters.
var nameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidProjectName reports whether name is usable as a subdomain label.
func ValidProjectName(name string) bool {
	return nameRe.MatchString(name)
}

// Project is the unit of ownership for deployments. ProdDeploymentID holds
// the uuid of the single deployment currently serving production traffic,
// or is empty when none does. It is mutated only through the promotion
// coordinator's compare-and-swap, never written directly.
type Project struct {
	UUID             string        `json:"uuid" bson:"_id"`
	Name             string        `json:"name" bson:"name"`
	Language         string        `json:"language" bson:"language"`
	Status           ProjectStatus `json:"status" bson:"status"`
	OwnerID          string        `json:"owner_id" bson:"owner_id"`
	Subdomain        string        `json:"subdomain" bson:"subdomain"`
	// Stored without omitempty so the compare-and-swap filter can match
	// the empty value.
	ProdDeploymentID string    `json:"prod_deployment_id,omitempty" bson:"prod_deployment_id"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}
