package model

import (
	"time"

	"github.com/google/uuid"
)

// Project status enum constants
const (
	ProjectPlanning      = "PLANNING"
	ProjectInDevelopment = "IN_DEVELOPMENT"
	ProjectTesting       = "TESTING"
	ProjectDeployed      = "DEPLOYED"
	ProjectOnHold        = "ON_HOLD"
)

// Project is a delivery record for a client engagement. Highlighted projects
// surface on the public showcase.
type Project struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(255);not null" json:"name"`
	Summary            string     `gorm:"type:varchar(500)" json:"summary"`
	Details            string     `gorm:"type:text" json:"details"`
	Status             string     `gorm:"type:varchar(30);not null;default:'PLANNING';index" json:"status"`
	ProgressPercentage int        `gorm:"default:0" json:"progress_percentage"`
	Highlighted        bool       `gorm:"default:false;index" json:"highlighted"`
	StartDate          *time.Time `gorm:"type:date" json:"start_date"`
	EndDate            *time.Time `gorm:"type:date" json:"end_date"`
	RepoLink           string     `gorm:"type:varchar(500)" json:"repo_link"`
	ClientID           *uuid.UUID `gorm:"type:uuid;index" json:"client_id"`
	Client             *User      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	OwnerID            *uuid.UUID `gorm:"type:uuid" json:"owner_id"`
	Owner              *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ValidProjectStatus reports whether status is a known project lifecycle state
func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectPlanning, ProjectInDevelopment, ProjectTesting, ProjectDeployed, ProjectOnHold:
		return true
	}
	return false
}
