package user_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/user"
	"github.com/shanmukhasaireddy13/study-tracker/storage/database/inmem"
)

type mailbox chan *core.EmailMessage

func (m mailbox) SendMessages(msgs ...*core.EmailMessage) {
	for _, msg := range msgs {
		m <- msg
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	box := make(mailbox, 1)
	svc := user.NewService(inmemdb.NewUserRepository(inmemdb.Open()), box)

	nu := user.NewUser{Name: " Asha ", Email: "Asha@Test.in", Password: "Mango#Tree42", PasswordConfirm: "Mango#Tree42"}
	require.NoError(t, nu.Validate(ctx, validate, svc))
	usr, err := svc.Create(ctx, nu)
	require.NoError(t, err)
	assert.Equal(t, "Asha", usr.Name)
	assert.Equal(t, "asha@test.in", usr.Email)
	assert.True(t, usr.IsStudent())
	assert.NoError(t, usr.CheckPassword("Mango#Tree42"))

	dup := user.NewUser{Name: "A", Email: "asha@test.in", Password: "Mango#Tree42", PasswordConfirm: "Mango#Tree42"}
	assert.True(t, core.IsValidation(dup.Validate(ctx, validate, svc)))

	// the owner may keep their own email
	uu := user.UpdateUser{Email: "asha@test.in"}
	require.NoError(t, uu.Validate(ctx, usr, validate, svc))

	_, err = svc.GetByEmail(ctx, " ASHA@test.in ")
	require.NoError(t, err)
	_, err = svc.GetByID(ctx, "missing")
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, svc.RequestPasswordReset(ctx, "asha@test.in"))
	select {
	case msg := <-box:
		assert.Equal(t, "asha@test.in", msg.To[0].Address)
		assert.True(t, strings.Contains(msg.TextContent, "uid="+user.EncodeUID(usr)))
	case <-time.After(time.Second):
		t.Fatal("no password reset email sent")
	}
	assert.True(t, core.IsNotFound(svc.RequestPasswordReset(ctx, "nobody@test.in")))

	token, err := user.MakeToken(usr, time.Now())
	require.NoError(t, err)
	bad := user.ResetUserPassword{Token: "nope-nope", UID: user.EncodeUID(usr), Password: "Guava#Bush77", PasswordConfirm: "Guava#Bush77"}
	assert.True(t, core.IsValidation(svc.ResetPassword(ctx, bad)))

	good := bad
	good.Token = token
	require.NoError(t, svc.ResetPassword(ctx, good))
	usr, err = svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("Guava#Bush77"))

	// the password changed, so the token is spent
	assert.True(t, core.IsValidation(svc.ResetPassword(ctx, good)))
}
