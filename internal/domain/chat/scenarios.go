package chat

// Scenario is a canned incident description offered by the UI so a demo can
// be driven without typing a full incident report.
type Scenario struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Scenarios returns the built-in demo incident catalog.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Title:       "Critical Database Outage",
			Description: "Our primary database cluster at db-primary.us-east-1.rds.amazonaws.com is experiencing connection timeouts. Error code 2002. Users unable to access core services. Last successful connection was 15 minutes ago.",
		},
		{
			Title:       "High API Latency",
			Description: "API Gateway showing 2000ms+ response times for /api/v1/users endpoint. CPU utilization at 85% across all instances. Memory usage normal. Started 30 minutes ago.",
		},
		{
			Title:       "Payment Processing Issues",
			Description: "Stripe webhook failures detected. Transaction success rate dropped to 78%. Error logs showing 'payment_method_declined' for valid cards. Revenue impact estimated at $15K/hour.",
		},
		{
			Title:       "CDN Performance Degradation",
			Description: "CloudFront distribution showing cache hit ratio of 45% (normally 92%). Origin requests increased by 340%. Users reporting slow page loads globally.",
		},
	}
}
