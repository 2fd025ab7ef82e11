package script

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/message"
	lua "github.com/yuin/gopher-lua"
)

// PushMessageEvent pushes a message as an event table:
//
//	{ name = "message", message = "...", <property> = <value>, ... }
//
// Properties holding strings, numbers or booleans keep their Lua type; other values are
// converted with fmt.Sprint.
//
// Parameters:
//   - L: the Lua state
//   - args: the message
func PushMessageEvent(L *lua.LState, args message.MessageEventArgs) {
	tbl := L.NewTable()
	for _, key := range args.Keys() {
		v, _ := args.Property(key)
		tbl.RawSetString(key, toLValue(v))
	}
	tbl.RawSetString("name", lua.LString("message"))
	tbl.RawSetString("message", lua.LString(args.Message()))
	L.Push(tbl)
}

func toLValue(v any) lua.LValue {
	switch x := v.(type) {
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	}
	return lua.LString(fmt.Sprint(v))
}
