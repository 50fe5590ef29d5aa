package queue

import "time"

// StockAlertQueue is the durable queue low-stock notifications land on.
const StockAlertQueue = "medicine.stock.low"

// StockAlertEvent is emitted when a reminder creation drains a medicine's
// stock to or below the configured threshold. Consumers (pharmacy dashboard,
// restock jobs) react asynchronously; the API never waits on them.
type StockAlertEvent struct {
	MedicineID   int64     `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Remaining    int       `json:"remaining"`
	Threshold    int       `json:"threshold"`
	At           time.Time `json:"at"`
}
