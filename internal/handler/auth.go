package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gunpong/server/internal/core/event"
	"github.com/gunpong/server/internal/net"
	"github.com/gunpong/server/internal/net/packet"
	"github.com/gunpong/server/internal/persist"
	"github.com/gunpong/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	minNameRunes   = 2
	maxNameRunes   = 16
	minPasswordLen = 4

	authDBTimeout = 5 * time.Second
)

// NormalizeName canonicalizes a display name: trimmed, fullwidth forms
// folded to their halfwidth equivalents, then NFC-composed. Uniqueness
// checks and storage both see this form, so "Ａｌｉｃｅ" and "Alice"
// are the same player.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	s = width.Fold.String(s)
	return norm.NFC.String(s)
}

func validName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < minNameRunes || n > maxNameRunes {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// HandleRegister creates an account and logs the session into the lobby.
func HandleRegister(sess *net.Session, data json.RawMessage, deps *Deps) {
	var msg packet.RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		sendError(sess, "bad request")
		return
	}

	name := NormalizeName(msg.Name)
	if !validName(name) {
		sendError(sess, fmt.Sprintf("name must be %d-%d characters", minNameRunes, maxNameRunes))
		return
	}
	if len(msg.Password) < minPasswordLen {
		sendError(sess, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authDBTimeout)
	defer cancel()

	existing, err := deps.Accounts.Load(ctx, name)
	if err != nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sendError(sess, "internal error")
		return
	}
	if existing != nil {
		sendError(sess, "name already taken")
		return
	}

	account, err := deps.Accounts.Create(ctx, name, msg.Password, sess.IP)
	if err != nil {
		deps.Log.Error("建立帳號資料庫錯誤", zap.Error(err))
		sendError(sess, "internal error")
		return
	}
	deps.Log.Info(fmt.Sprintf("建立帳號  名稱=%s  ip=%s", name, sess.IP))

	enterLobby(sess, account, deps)
}

// HandleLogin verifies a password and logs the session into the lobby.
func HandleLogin(sess *net.Session, data json.RawMessage, deps *Deps) {
	var msg packet.LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		sendError(sess, "bad request")
		return
	}

	if !deps.LoginRate.Allow(sess.IP) {
		sendError(sess, "too many login attempts, try again later")
		return
	}

	name := NormalizeName(msg.Name)

	ctx, cancel := context.WithTimeout(context.Background(), authDBTimeout)
	defer cancel()

	account, err := deps.Accounts.Load(ctx, name)
	if err != nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sendError(sess, "internal error")
		return
	}
	if account == nil || !deps.Accounts.ValidatePassword(account.PasswordHash, msg.Password) {
		sendError(sess, "invalid name or password")
		return
	}

	admitAccount(sess, account, deps)
}

// HandleRejoin re-authenticates with a signed token instead of a password,
// for clients recovering from a dropped connection.
func HandleRejoin(sess *net.Session, data json.RawMessage, deps *Deps) {
	var msg packet.RejoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		sendError(sess, "bad request")
		return
	}

	accountID, _, err := deps.Tokens.Verify(msg.Token)
	if err != nil {
		sendError(sess, "invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authDBTimeout)
	defer cancel()

	account, err := deps.Accounts.LoadByID(ctx, accountID)
	if err != nil {
		deps.Log.Error("載入帳號資料庫錯誤", zap.Error(err))
		sendError(sess, "internal error")
		return
	}
	if account == nil {
		sendError(sess, "invalid token")
		return
	}

	admitAccount(sess, account, deps)
}

// admitAccount runs the shared post-credential checks and admits the
// session into the lobby.
func admitAccount(sess *net.Session, account *persist.AccountRow, deps *Deps) {
	if account.Banned {
		deps.Log.Info(fmt.Sprintf("被封鎖帳號嘗試登入  名稱=%s  ip=%s", account.Name, sess.IP))
		sendError(sess, "account banned")
		return
	}
	if deps.World.GetByAccount(account.ID) != nil {
		sendError(sess, "account already online")
		return
	}
	enterLobby(sess, account, deps)
}

func enterLobby(sess *net.Session, account *persist.AccountRow, deps *Deps) {
	token, err := deps.Tokens.Issue(account.ID, account.Name)
	if err != nil {
		deps.Log.Error("簽發重連憑證失敗", zap.Error(err))
		sendError(sess, "internal error")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authDBTimeout)
	defer cancel()
	if err := deps.Accounts.UpdateLastActive(ctx, account.ID, sess.IP); err != nil {
		deps.Log.Error("更新最後活動時間資料庫錯誤", zap.Error(err))
	}

	deps.World.AddPlayer(&world.PlayerInfo{
		SessionID: sess.ID,
		Session:   sess,
		AccountID: account.ID,
		Name:      account.Name,
		Rating:    account.Rating,
		Wins:      account.Wins,
		Losses:    account.Losses,
	})
	sess.SetState(packet.StateLobby)

	sess.SendJSON(packet.MsgAuthOK, packet.AuthOKMsg{
		Name:   account.Name,
		Token:  token,
		Rating: account.Rating,
		Wins:   account.Wins,
		Losses: account.Losses,
	})
	event.Emit(deps.Bus, event.AccountLoggedIn{
		SessionID:   sess.ID,
		AccountID:   account.ID,
		AccountName: account.Name,
	})
	deps.Log.Info(fmt.Sprintf("登入成功  名稱=%s  ip=%s", account.Name, sess.IP))
}
