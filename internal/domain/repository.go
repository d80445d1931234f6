package domain

import "strings"

// RemoteRepo is a repository reported by the hosting platform for this run
type RemoteRepo struct {
	FullName   string `json:"full_name"` // owner/name
	HTTPSURL   string `json:"https_url"`
	SSHURL     string `json:"ssh_url"`
	IsArchived bool   `json:"is_archived"`
}

// ShortName returns the last path segment of the full name, used as the
// local directory name
func (r RemoteRepo) ShortName() string {
	return ShortName(r.FullName)
}

// CloneURL returns the SSH or HTTPS URL. It falls back to HTTPS when the
// platform did not report an SSH URL.
func (r RemoteRepo) CloneURL(useSSH bool) string {
	if useSSH && r.SSHURL != "" {
		return r.SSHURL
	}
	return r.HTTPSURL
}

// ShortName returns the trailing path segment of a repository identifier
func ShortName(fullName string) string {
	fullName = strings.TrimSuffix(fullName, "/")
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// WorkingCopy is a local directory known to contain version-control metadata
type WorkingCopy struct {
	Name string // directory base name
	Path string
}
