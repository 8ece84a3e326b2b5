package eventbus

var (
	TopicInventoryEvents = NewTopic("car-passion.inventory.events")
)

var AllTopics = []Topic{
	TopicInventoryEvents,
}

// Inventory event types.
const (
	EventCarCreated       = "car.created"
	EventCarUpdated       = "car.updated"
	EventCarStatusChanged = "car.status_changed"
	EventCarDeleted       = "car.deleted"
)

// InventoryEvent is the payload of every inventory event.
type InventoryEvent struct {
	CarID     string `json:"car_id"`
	Make      string `json:"make,omitempty"`
	Model     string `json:"model,omitempty"`
	Year      int    `json:"year,omitempty"`
	Status    string `json:"status,omitempty"`
	Actor     string `json:"actor,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
