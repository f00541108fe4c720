package eventstream

import "errors"

// ErrNilPracticeEvent indicates a nil practice event payload was provided to a publisher.
var ErrNilPracticeEvent = errors.New("nil practice event")
