package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gunpong/server/internal/net"
)

// HandleQuit closes the session. Cleanup happens on the close path:
// InputSystem notices the dead session next tick and runs the full
// disconnect bookkeeping (forfeit, dequeue, removal).
func HandleQuit(sess *net.Session, _ json.RawMessage, deps *Deps) {
	name := "?"
	if p := deps.World.GetBySession(sess.ID); p != nil {
		name = p.Name
	}
	deps.Log.Info(fmt.Sprintf("玩家登出  session=%d  名稱=%s", sess.ID, name))
	sess.Close()
}
