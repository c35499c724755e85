package domain

import "time"

// DeployStatus represents the build outcome of a deployment. It transitions
// exactly once, from deploying to a terminal value.
type DeployStatus string

const (
	DeployStatusDeploying DeployStatus = "deploying"
	DeployStatusSuccess   DeployStatus = "success"
	DeployStatusFailed    DeployStatus = "failed"
)

// validDeployTransitions defines the allowed state machine transitions.
var validDeployTransitions = map[DeployStatus][]DeployStatus{
	DeployStatusDeploying: {DeployStatusSuccess, DeployStatusFailed},
}

// CanTransitionTo reports whether a transition from the current deploy status
// to next is valid. Both terminal states reject every transition.
func (s DeployStatus) CanTransitionTo(next DeployStatus) bool {
	for _, allowed := range validDeployTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the build has finished, either way.
func (s DeployStatus) Terminal() bool {
	return s == DeployStatusSuccess || s == DeployStatusFailed
}

// DeploymentStatus is the serving switch, independent of the build outcome.
// It only has meaning once the build succeeded, and may toggle any number of
// times after that.
type DeploymentStatus string

const (
	DeploymentActive   DeploymentStatus = "active"
	DeploymentInactive DeploymentStatus = "inactive"
)

// Deployment is a single immutable build of a project's code plus its
// serving state. IsProd is a cached view of Project.ProdDeploymentID; the
// project pointer is authoritative when the two disagree mid-swap.
type Deployment struct {
	UUID         string           `json:"uuid" bson:"_id"`
	Seq          int64            `json:"seq" bson:"seq"`
	ProjectID    string           `json:"project_id" bson:"project_id"`
	OwnerID      string           `json:"owner_id" bson:"owner_id"`
	Domain       string           `json:"domain" bson:"domain"`
	PreviewURL   string           `json:"preview_url" bson:"preview_url"`
	Status       DeploymentStatus `json:"status" bson:"status"`
	DeployStatus DeployStatus     `json:"deploy_status" bson:"deploy_status"`
	IsProd       bool             `json:"is_prod" bson:"is_prod"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

// Promotable reports whether the deployment can be promoted to production.
func (d *Deployment) Promotable() bool {
	return d.DeployStatus == DeployStatusSuccess && d.Status == DeploymentActive
}
