package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "lodgego:v1"

func KeyBedPlacement(bedID uuid.UUID) string {
	return fmt.Sprintf("%s:bed:%s", ns, bedID)
}

func KeyEvent(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", ns, eventID)
}

func KeyUser(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", ns, userID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyJobLock(job string) string {
	return fmt.Sprintf("%s:lock:job:%s", ns, job)
}

func ChannelNotifications(userID uuid.UUID) string {
	return fmt.Sprintf("%s:notifications:%s", ns, userID)
}
