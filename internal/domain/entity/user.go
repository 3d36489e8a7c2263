package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the account table shared by customers, providers and admins
type User struct {
	ID           uuid.UUID                           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID       int                                 `gorm:"not null;index" json:"role_id"`
	Name         string                              `gorm:"type:varchar(255);not null" json:"name"`
	FirstName    string                              `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string                              `gorm:"type:varchar(100)" json:"last_name"`
	Email        string                              `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string                              `gorm:"type:text;not null" json:"-"`
	Phone        string                              `gorm:"type:varchar(30)" json:"phone,omitempty"`
	ProfileImage string                              `gorm:"type:text" json:"profile_image,omitempty"`
	Location     Location                            `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Preferences  datatypes.JSONType[UserPreferences] `gorm:"type:jsonb;not null" json:"preferences"`
	IsVerified   bool                                `gorm:"not null;default:false" json:"is_verified"`
	IsActive     bool                                `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role              Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	FavoriteProviders []Provider `gorm:"many2many:user_favorite_providers;" json:"favorite_providers,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserPreferences is stored as a single JSONB document.
type UserPreferences struct {
	ServiceCategories       []string                    `json:"serviceCategories"`
	MaxDistance             float64                     `json:"maxDistance"`
	NotificationPreferences UserNotificationPreferences `json:"notificationPreferences"`
}

type UserNotificationPreferences struct {
	Email             UserEmailPreferences `json:"email"`
	SMS               UserSMSPreferences   `json:"sms"`
	PushNotifications PushPreferences      `json:"pushNotifications"`
}

type UserEmailPreferences struct {
	Enabled              bool `json:"enabled"`
	BookingConfirmations bool `json:"bookingConfirmations"`
	Reminders            bool `json:"reminders"`
	Promotions           bool `json:"promotions"`
}

type UserSMSPreferences struct {
	Enabled              bool `json:"enabled"`
	BookingConfirmations bool `json:"bookingConfirmations"`
	Reminders            bool `json:"reminders"`
}

type PushPreferences struct {
	Enabled bool `json:"enabled"`
}

// DefaultUserPreferences returns the preferences assigned at registration.
func DefaultUserPreferences() UserPreferences {
	return UserPreferences{
		ServiceCategories: []string{},
		MaxDistance:       10,
		NotificationPreferences: UserNotificationPreferences{
			Email: UserEmailPreferences{
				Enabled:              true,
				BookingConfirmations: true,
				Reminders:            true,
			},
			SMS: UserSMSPreferences{
				Enabled:              true,
				BookingConfirmations: true,
				Reminders:            true,
			},
			PushNotifications: PushPreferences{Enabled: true},
		},
	}
}

// SplitName splits a full name on the first space.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
