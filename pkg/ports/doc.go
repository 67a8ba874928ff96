// Package ports declares the driven-side interfaces the flume engine
// and its adapters depend on: the knowledge connector and the ticket
// store. Implementations live under internal/.
package ports
