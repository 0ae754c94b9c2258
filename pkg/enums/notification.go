package enums

// NotificationAudience selects which party a notification is addressed to.
type NotificationAudience string

const (
	NotificationAudienceCustomer NotificationAudience = "customer"
	NotificationAudienceMerchant NotificationAudience = "merchant"
)

var validNotificationAudiences = []NotificationAudience{
	NotificationAudienceCustomer,
	NotificationAudienceMerchant,
}

// IsValid checks whether the audience matches the canonical enum.
func (a NotificationAudience) IsValid() bool {
	return isOneOf(validNotificationAudiences, a)
}

// ParseNotificationAudience converts raw strings into NotificationAudience.
func ParseNotificationAudience(value string) (NotificationAudience, error) {
	return parseOneOf("notification audience", validNotificationAudiences, value)
}

// NotificationField names the order status field a notification reports on.
type NotificationField string

const (
	NotificationFieldFulfillment NotificationField = "fulfillment"
	NotificationFieldPayment     NotificationField = "payment"
)
