// ABOUTME: Version information
// ABOUTME: Product identity reported by the CLI and the now-playing hub
package version

const (
	// Version is the release version
	Version = "0.3.0"
	// Product is the product name
	Product = "Crossing Radio"
	// Manufacturer is the maker reported to other devices
	Manufacturer = "harperreed"
)
