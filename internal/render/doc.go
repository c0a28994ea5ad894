// Package render turns catalog snapshots into ordered, image-resolved
// views for a presentation layer. A scheduler debounces refresh
// requests and guarantees that only the newest render pass delivers
// output; superseded passes stop at their next delivery step.
package render
