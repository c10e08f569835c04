package queue

const TypeNotificationDeliver = "notification:deliver"

// NotificationDeliverPayload carries only the notification id and the
// channel name. The worker re-fetches the record, which keeps the task
// valid however long after the creating transaction it runs.
type NotificationDeliverPayload struct {
	NotificationID string `json:"notification_id"`
	Channel        string `json:"channel"`
}
