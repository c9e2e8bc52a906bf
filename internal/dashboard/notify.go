package dashboard

import "github.com/sirupsen/logrus"

// Notifier surfaces transient outcomes to the user.
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// LogNotifier reports outcomes through the logger only. It is the default
// when no notifier is given.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) Success(msg string) {
	n.Log.WithField("component", "dashboard").Info(msg)
}

func (n LogNotifier) Failure(msg string, err error) {
	n.Log.WithField("component", "dashboard").WithError(err).Error(msg)
}
