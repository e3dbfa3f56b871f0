package status

// Status is a custom type to represent the possible status
type Status int

const (
	// Idle means the service is available to new conversion runs
	Idle Status = 0

	// Collecting means that source data is being downloaded
	Collecting Status = 1

	// Converting means that source data is being converted
	Converting Status = 2

	// Uploading means that converted files are being uploaded
	Uploading Status = 3
)

var (
	statusText = map[Status]string{
		Idle:       "System is idle",
		Collecting: "System is collecting data",
		Converting: "System is converting data",
		Uploading:  "System is uploading results",
	}
)

// Text returns a text for a status. It returns the empty
// string if the status is unknown.
func Text(status Status) string {
	return statusText[status]
}
