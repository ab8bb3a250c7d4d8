package ws

const TypeQueueUpdated = "queue_updated"

const (
	ActionPatientAdded          = "patient_added"
	ActionNextPatientCalled     = "next_patient_called"
	ActionConsultationCompleted = "consultation_completed"
	ActionConsultationCancelled = "consultation_cancelled"
	ActionNoShowMarked          = "no_show_marked"
)

// Event: уведомление об изменении очереди. Наблюдатели не применяют его как дифф,
// а перечитывают состояние очереди целиком.
type Event struct {
	Type        string `json:"type"`
	QueueID     uint   `json:"queueId"`
	Action      string `json:"action"`
	PatientID   uint   `json:"patientId,omitempty"`
	QueueItemID uint   `json:"queueItemId,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// QueueUpdated собирает событие типа queue_updated.
func QueueUpdated(queueID uint, action string) Event {
	return Event{Type: TypeQueueUpdated, QueueID: queueID, Action: action}
}
