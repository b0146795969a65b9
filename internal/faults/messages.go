package faults

import (
	"fmt"

	"github.com/JaimeStill/lyceum/pkg/remote"
)

const (
	msgNotFound      = "Not found"
	msgMissingData   = "Missing data"
	msgRejected      = "The Watson credentials being used by your class were rejected. Please let your teacher or group leader know."
	msgRemoteMissing = "Your machine learning model could not be found on the training server. Please try again"
	msgUnexpected    = "Failed to communicate with the machine learning training service"
)

var capacityResource = map[remote.Provider]string{
	remote.Assistant:         "API keys have no more workspaces available",
	remote.VisualRecognition: "API keys have no more classifiers available",
}

// NotFound reports a missing local resource.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: msgNotFound}
}

// BadRequest reports an invalid request. An empty message becomes
// "Missing data".
func BadRequest(message string) *Error {
	if message == "" {
		message = msgMissingData
	}
	return &Error{Kind: KindBadRequest, Message: message}
}

// Capacity reports that the class cannot create another model with provider.
func Capacity(provider remote.Provider) *Error {
	resource, ok := capacityResource[provider]
	if !ok {
		resource = "API keys have no more capacity available"
	}
	return &Error{
		Kind:     KindInsufficientCapacity,
		Provider: string(provider),
		Message: fmt.Sprintf(
			"Your class already has created their maximum allowed number of models. "+
				"Please let your teacher or group leader know that their \"%s %s\" "+
				"so they can delete some existing models or add more API keys.",
			provider, resource,
		),
	}
}

// Rejected reports that provider refused the class's credentials.
func Rejected(provider remote.Provider) *Error {
	return &Error{Kind: KindCredentialsRejected, Provider: string(provider), Message: msgRejected}
}

// Missing reports that no credentials exist for projectType.
func Missing(projectType string) *Error {
	return &Error{
		Kind: KindCredentialsMissing,
		Message: fmt.Sprintf(
			"No Watson credentials have been set up for training %s projects. "+
				"Please let your teacher or group leader know.",
			projectType,
		),
	}
}

// RemoteMissing reports that provider no longer has the model.
func RemoteMissing(provider remote.Provider) *Error {
	return &Error{Kind: KindRemoteModelMissing, Provider: string(provider), Message: msgRemoteMissing}
}

// RateLimited reports that provider is throttling the class's key.
func RateLimited(provider remote.Provider) *Error {
	return &Error{
		Kind:     KindRateLimited,
		Provider: string(provider),
		Message: fmt.Sprintf(
			"Your class is making too many requests to create machine learning models at too fast a rate. "+
				"Please stop now and let your teacher or group leader know that "+
				"\"the %s service is currently rate limiting their API key\"",
			provider,
		),
	}
}

// InsufficientData passes the provider's explanation through unchanged.
func InsufficientData(provider remote.Provider, message string) *Error {
	return &Error{Kind: KindInsufficientTrainingData, Provider: string(provider), Message: message}
}

// Unexpected wraps err behind the generic message.
func Unexpected(err error) *Error {
	e := &Error{Kind: KindUnexpected, Message: msgUnexpected, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}
