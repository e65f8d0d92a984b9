package services

// Notifier delivers short text notices to the giveaway organizer.
// Delivery is best effort.
type Notifier interface {
	Notify(text string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
