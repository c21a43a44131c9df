package version

// Current is the running build version, overridden with
// -ldflags "-X github.com/studiowebux/text2image/internal/version.Current=x.y.z"
var Current = "0.1.0-dev"

// UserAgent is sent with every request to the image service
func UserAgent() string {
	return "text2image/" + Current
}
