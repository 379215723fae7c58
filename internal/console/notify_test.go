package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	n.Notify(Notification{Level: LevelSuccess, Message: MsgSignInOK})
	n.Notify(Notification{Level: LevelError, Message: MsgSignInFailed})
	assert.Equal(t, "✓ Logged in successfully\n✗ Sign-in failed. Please check your credentials.\n", buf.String())
}
