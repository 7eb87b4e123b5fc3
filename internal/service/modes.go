package service

import (
	"bookvideolink/internal/events"
	"bookvideolink/internal/models"
)

// ModeBehaviour is how one wizard mode differs from the others.
type ModeBehaviour struct {
	CheckAvailability  bool
	SelectRooms        bool
	HydrateFromBooking bool
	Event              string
}

var modeBehaviours = map[models.Mode]ModeBehaviour{
	models.ModeCreate: {
		CheckAvailability: true,
		SelectRooms:       true,
		Event:             events.EventBookingCreated,
	},
	models.ModeAmend: {
		CheckAvailability:  true,
		SelectRooms:        true,
		HydrateFromBooking: true,
		Event:              events.EventBookingAmended,
	},
	models.ModeRequest: {
		Event: events.EventBookingRequested,
	},
	models.ModeCancel: {
		HydrateFromBooking: true,
		Event:              events.EventBookingCancelled,
	},
}

func BehaviourOf(mode models.Mode) ModeBehaviour {
	return modeBehaviours[mode]
}
