// models/team.go
package models

import "time"

type TeamRole string

const (
	TeamRoleScrumMaster  TeamRole = "SCRUM_MASTER"
	TeamRoleProductOwner TeamRole = "PRODUCT_OWNER"
	TeamRoleDeveloper    TeamRole = "DEVELOPER"
)

// Team is the membership aggregate: at most one scrum master, at most one
// product owner, a developer list with no duplicates, a capacity and a
// closed flag. Version is the optimistic-concurrency token; every mutation
// commits with a version check and bumps it.
type Team struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`

	CourseID  uint     `json:"course_id" gorm:"not null;index"`
	Course    *Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	ProjectID *uint    `json:"project_id" gorm:"index"`
	Project   *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`

	ScrumMasterID  *uint `json:"scrum_master_id"`
	ScrumMaster    *User `json:"scrum_master,omitempty" gorm:"foreignKey:ScrumMasterID"`
	ProductOwnerID *uint `json:"product_owner_id"`
	ProductOwner   *User `json:"product_owner,omitempty" gorm:"foreignKey:ProductOwnerID"`

	Developers []User `json:"developers,omitempty" gorm:"many2many:team_developers"`

	MaxMembers int  `json:"max_members" gorm:"not null;default:10"`
	IsClosed   bool `json:"is_closed" gorm:"not null;default:false"`
	Version    uint `json:"-" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// MemberIDs returns the deduplicated ids of everyone bound to the team.
func (t *Team) MemberIDs() []uint {
	seen := make(map[uint]bool)
	var ids []uint
	add := func(id uint) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if t.ScrumMasterID != nil {
		add(*t.ScrumMasterID)
	}
	if t.ProductOwnerID != nil {
		add(*t.ProductOwnerID)
	}
	for _, dev := range t.Developers {
		add(dev.ID)
	}
	return ids
}

func (t *Team) MemberCount() int {
	return len(t.MemberIDs())
}

func (t *Team) IsFull() bool {
	return t.MemberCount() >= t.MaxMembers
}

func (t *Team) CanAcceptMembers() bool {
	return !t.IsClosed && !t.IsFull()
}

func (t *Team) HasMember(userID uint) bool {
	for _, id := range t.MemberIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// RoleOf reports the role a user holds in the team. Scrum master and
// product owner take precedence over a developer slot.
func (t *Team) RoleOf(userID uint) (TeamRole, bool) {
	if t.ScrumMasterID != nil && *t.ScrumMasterID == userID {
		return TeamRoleScrumMaster, true
	}
	if t.ProductOwnerID != nil && *t.ProductOwnerID == userID {
		return TeamRoleProductOwner, true
	}
	for _, dev := range t.Developers {
		if dev.ID == userID {
			return TeamRoleDeveloper, true
		}
	}
	return "", false
}
