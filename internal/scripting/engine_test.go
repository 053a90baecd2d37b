package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trapline/sim/internal/data"
	"github.com/trapline/sim/internal/enemy"
)

func writeScript(t *testing.T, dir, sub, name, body string) {
	t.Helper()
	p := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, name), []byte(body), 0o644))
}

func TestShippedScripts(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.True(t, e.Has("calc_damage"))
	assert.Equal(t, 25.0, e.CalcDamage(DamageContext{Damage: 25, DamageType: data.DamageFire}))
}

func TestCalcDamageUsesArmor(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "combat", "damage.lua", `
function calc_damage(ctx)
    if ctx.damage_type == "lightning" then
        return ctx.damage * 2
    end
    return ctx.damage - ctx.target.armor
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 7.0, e.CalcDamage(DamageContext{Damage: 10, DamageType: data.DamageNormal, TargetArmor: 3}))
	assert.Equal(t, 20.0, e.CalcDamage(DamageContext{Damage: 10, DamageType: data.DamageLightning}))
	assert.Equal(t, 0.0, e.CalcDamage(DamageContext{Damage: 1, DamageType: data.DamageNormal, TargetArmor: 5}), "never heals")
}

func TestCalcDamageFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "combat", "damage.lua", `
function calc_damage(ctx)
    error("boom")
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, 12.0, e.CalcDamage(DamageContext{Damage: 12}))

	empty, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer empty.Close()
	assert.False(t, empty.Has("calc_damage"))
	assert.Equal(t, 12.0, empty.CalcDamage(DamageContext{Damage: 12}))
}

func TestNewEngineSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "combat", "broken.lua", "function calc_damage(")
	_, err := NewEngine(dir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.lua")
}

func TestResolveFeedsEnemy(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "combat", "damage.lua", `
function calc_damage(ctx)
    return ctx.damage - ctx.target.armor
end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	tmpl := &data.EnemyTemplate{ID: "brute", MaxHealth: 100, Armor: 4, Level: 1, Radius: 0.5}
	en := enemy.New(1, tmpl, enemy.Deps{Resolver: e})
	en.SetActive(true)
	en.RegisterAttack(10, data.DamageNormal)
	assert.Equal(t, 94.0, en.Health())
}

func TestCoreHelpersLoadFirst(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, filepath.Join("combat", "elements"), "a_fire.lua", `
function calc_damage(ctx)
    return half(ctx.damage) + #DAMAGE_TYPES
end
`)
	writeScript(t, dir, "core", "z_math.lua", `
function half(v) return v / 2 end
`)
	writeScript(t, dir, "core", "notes.txt", "not a script")

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	require.Len(t, e.Files(), 2)
	assert.Equal(t, "z_math.lua", filepath.Base(e.Files()[0]))
	assert.Equal(t, 9.0, e.CalcDamage(DamageContext{Damage: 10}))
}
