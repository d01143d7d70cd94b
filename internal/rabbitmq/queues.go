package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetBookingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "bookings.confirmed", RoutingKey: "booking.confirmed"},
		{QueueName: "bookings.cancelled", RoutingKey: "booking.cancelled"},
	}
}
