// Package script binds ShaderData to gopher-lua. Scripts see a ShaderData as a userdata that
// can be indexed with a slot number (1 to 4), an effect parameter name, or a channel name:
//
//	obj.fill.effect.intensity = 0.5
//	obj.fill.effect[2] = { 1, 0, 0, 1 }
//	local r = obj.fill.effect.r
//
// The userdata wraps the ShaderData's Proxy, so a script that keeps it after the data is
// released reads nil and its writes are ignored.
package script

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
)

// ShaderDataTypeName is the registry name of the ShaderData userdata metatable.
const ShaderDataTypeName = "oxy.ShaderData"

// Register installs the ShaderData metatable and the global color helper table in L.
//
// Parameters:
//   - L: the Lua state
func Register(L *lua.LState) {
	mt := L.NewTypeMetatable(ShaderDataTypeName)
	L.SetFuncs(mt, map[string]lua.LGFunction{
		"__index":    shaderDataIndex,
		"__newindex": shaderDataNewIndex,
		"__tostring": shaderDataToString,
	})
	registerColor(L)
}

// PushShaderData attaches the data's proxy (if needed) and pushes the userdata wrapping it.
// Pushing the same data twice yields the same Lua value.
//
// Parameters:
//   - L: the Lua state, Register must have been called on it
//   - d: the shader data
func PushShaderData(L *lua.LState, d shader_data.ShaderData) {
	p := d.AttachProxy()
	if ud, ok := p.Binding().(*lua.LUserData); ok {
		L.Push(ud)
		return
	}
	ud := L.NewUserData()
	ud.Value = p
	L.SetMetatable(ud, L.GetTypeMetatable(ShaderDataTypeName))
	p.SetBinding(ud)
	L.Push(ud)
}

// ReleaseUserData detaches the proxy wrapped by ud. gopher-lua does not run __gc, so a host
// that drops a script's state or object calls this instead. The ShaderData itself stays alive;
// ud reads nil and ignores writes from now on.
//
// Parameters:
//   - ud: a userdata pushed by PushShaderData
//
// Returns:
//   - bool: true if a live proxy was detached
func ReleaseUserData(ud *lua.LUserData) bool {
	p, ok := ud.Value.(shader_data.Proxy)
	if !ok || p.IsDetached() {
		return false
	}
	p.Detach()
	return true
}

// PushUniform pushes the value of a slot: a number for vertex data and scalar uniforms, an
// array table for vector and matrix uniforms, nil when d is nil.
//
// Parameters:
//   - L: the Lua state
//   - d: the shader data, may be nil
//   - index: the slot
//
// Returns:
//   - int: the number of pushed values, always 1
func PushUniform(L *lua.LState, d shader_data.ShaderData, index shader_data.DataIndex) int {
	if d == nil || !index.IsValid() {
		L.Push(lua.LNil)
		return 1
	}
	dataType := d.DataType(index)
	if dataType.Components() <= 1 {
		L.Push(lua.LNumber(d.VertexData(index)))
		return 1
	}

	var values []float32
	if u, ok := d.Uniform(index); ok {
		values = u.Value()
	} else {
		v := d.SlotValue(index)
		values = v[:min(dataType.Components(), 4)]
	}
	tbl := L.CreateTable(len(values), 0)
	for i, v := range values {
		tbl.RawSetInt(i+1, lua.LNumber(v))
	}
	L.Push(tbl)
	return 1
}

// SetUniform writes the value at stack index valueIdx into a slot. Numbers set the scalar
// component; array tables set the leading components, or every matrix component when the slot
// is bound to a matrix uniform. Any other value raises a Lua argument error.
//
// Parameters:
//   - L: the Lua state
//   - d: the shader data
//   - valueIdx: the stack index of the value
//   - index: the slot
func SetUniform(L *lua.LState, d shader_data.ShaderData, valueIdx int, index shader_data.DataIndex) {
	switch v := L.Get(valueIdx).(type) {
	case lua.LNumber:
		d.SetVertexData(index, float32(v))
	case *lua.LTable:
		values := tableFloats(L, v, valueIdx)
		components := d.DataType(index).Components()
		if components > 4 {
			if len(values) > components {
				L.ArgError(valueIdx, fmt.Sprintf("at most %d values expected", components))
			}
			d.SetUniformValue(index, values...)
			return
		}
		if len(values) > 4 {
			L.ArgError(valueIdx, "at most 4 values expected")
		}
		slot := d.SlotValue(index)
		copy(slot[:], values)
		d.SetSlotValue(index, slot)
	default:
		L.ArgError(valueIdx, "number or table expected, got "+v.Type().String())
	}
}

func tableFloats(L *lua.LState, tbl *lua.LTable, argIdx int) []float32 {
	n := tbl.Len()
	values := make([]float32, n)
	for i := 1; i <= n; i++ {
		num, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(argIdx, fmt.Sprintf("element %d is not a number", i))
		}
		values[i-1] = float32(num)
	}
	return values
}

func checkProxy(L *lua.LState, n int) shader_data.Proxy {
	ud := L.CheckUserData(n)
	p, ok := ud.Value.(shader_data.Proxy)
	if !ok {
		L.ArgError(n, "ShaderData expected")
	}
	return p
}

// keyIndex resolves a Lua key: integers 1 to 4 address slots directly, strings go through the
// effect's parameter names and the channel table.
func keyIndex(p shader_data.Proxy, key lua.LValue) shader_data.DataIndex {
	switch k := key.(type) {
	case lua.LNumber:
		f := float64(k)
		if f != math.Trunc(f) || f < 1 || f > shader_data.NumData {
			return shader_data.DataUnknown
		}
		return shader_data.DataIndex(int(f) - 1)
	case lua.LString:
		return p.Lookup(string(k))
	}
	return shader_data.DataUnknown
}

func shaderDataIndex(L *lua.LState) int {
	p := checkProxy(L, 1)
	if p.IsDetached() {
		L.Push(lua.LNil)
		return 1
	}
	return PushUniform(L, p.Data(), keyIndex(p, L.CheckAny(2)))
}

func shaderDataNewIndex(L *lua.LState) int {
	p := checkProxy(L, 1)
	key := L.CheckAny(2)
	if p.IsDetached() {
		return 0
	}
	index := keyIndex(p, key)
	if !index.IsValid() {
		L.RaiseError("shader data has no parameter %s", key.String())
		return 0
	}
	SetUniform(L, p.Data(), 3, index)
	return 0
}

func shaderDataToString(L *lua.LState) int {
	p := checkProxy(L, 1)
	d := p.Data()
	if d == nil {
		L.Push(lua.LString("ShaderData (detached)"))
		return 1
	}
	name := "no owner"
	if o := d.Owner(); o != nil {
		name = o.Name()
	}
	L.Push(lua.LString(fmt.Sprintf("ShaderData (%s) %v", name, slotValues(d))))
	return 1
}

func slotValues(d shader_data.ShaderData) [shader_data.NumData]mgl32.Vec4 {
	var out [shader_data.NumData]mgl32.Vec4
	for i := shader_data.DataMin; i <= shader_data.DataMax; i++ {
		out[i] = d.SlotValue(i)
	}
	return out
}
