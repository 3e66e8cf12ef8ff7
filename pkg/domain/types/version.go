package types

// Version is the tagpack build version, overridden at link time.
var Version = "dev"

// ServiceName is reported by the health endpoint and used as the Sentry server name.
const ServiceName = "tagpack"
