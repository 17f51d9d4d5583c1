package gameevent

// eventSchema names the fields one event parser expects; anything else in
// that event's key list lands in Event.Remaining instead of Event.Fields.
type eventSchema struct {
	fields map[string]bool
}

func (s eventSchema) knows(name string) bool {
	return s.fields[name]
}

func schema(names ...string) eventSchema {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return eventSchema{fields: m}
}

// parserRegistry maps a game-event descriptor name to the set of fields its
// parser recognizes (spec.md §4.9's "static ... map keyed by event name").
// Unknown event names aren't an error here -- Descriptors.Decode already
// treats a missing descriptor id as the only failure mode; a known
// descriptor with no matching registry entry just sends every key to
// Remaining.
var parserRegistry = map[string]eventSchema{
	"player_death":               schema("userid", "attacker", "assister", "weapon", "weapon_itemid", "headshot", "penetrated", "noreplay", "assistedflash"),
	"player_hurt":                schema("userid", "attacker", "health", "armor", "weapon", "dmg_health", "dmg_armor", "hitgroup"),
	"player_spawn":               schema("userid", "teamnum"),
	"player_team":                schema("userid", "team", "oldteam", "disconnect", "silent", "isbot"),
	"player_connect":             schema("name", "userid", "networkid", "xuid", "bot"),
	"player_connect_full":        schema("userid"),
	"player_disconnect":          schema("userid", "reason", "name", "networkid", "xuid"),
	"player_footstep":            schema("userid"),
	"player_jump":                schema("userid"),
	"player_blind":               schema("userid", "attacker", "entityid", "blind_duration"),
	"player_falldamage":          schema("userid", "damage"),
	"player_sound":               schema("userid", "radius", "duration", "step"),
	"player_changename":          schema("userid", "oldname", "newname"),
	"weapon_fire":                schema("userid", "weapon", "silenced"),
	"weapon_reload":              schema("userid"),
	"weapon_zoom":                schema("userid"),
	"item_pickup":                schema("userid", "item", "silent", "defindex"),
	"item_equip":                 schema("userid", "item", "canzoom", "hassilencer", "issilencerson", "defindex"),
	"item_remove":                schema("userid", "item", "defindex"),
	"bomb_planted":               schema("userid", "site"),
	"bomb_defused":               schema("userid", "site"),
	"bomb_exploded":              schema("userid", "site"),
	"bomb_begindefuse":           schema("userid", "haskit"),
	"bomb_beginplant":            schema("userid", "site"),
	"bomb_abortdefuse":           schema("userid"),
	"bomb_abortplant":            schema("userid", "site"),
	"bomb_dropped":               schema("userid", "entindex"),
	"bomb_pickup":                schema("userid"),
	"hostage_rescued":            schema("userid", "hostage", "site"),
	"hostage_hurt":               schema("userid", "hostage"),
	"hostage_killed":             schema("userid", "hostage"),
	"round_start":                schema("timelimit", "fraglimit", "objective"),
	"round_end":                  schema("winner", "reason", "message", "legacy", "player_count", "nomusic"),
	"round_freeze_end":           schema(),
	"round_mvp":                  schema("userid", "reason", "value"),
	"round_announce_match_start": schema(),
	"round_prestart":             schema(),
	"round_poststart":            schema(),
	"buytime_ended":              schema(),
	"cs_win_panel_match":         schema("show_timer_defend", "show_timer_attack", "final_event", "funfact_token", "funfact_player", "funfact_data1", "funfact_data2", "funfact_data3"),
	"cs_win_panel_round":         schema("show_timer_defend", "show_timer_attack", "final_event", "funfact_token", "funfact_player", "funfact_data1", "funfact_data2", "funfact_data3"),
	"announce_phase_end":         schema(),
	"begin_new_match":            schema(),
	"cs_pre_restart":             schema(),
	"cs_round_start_beep":        schema(),
	"cs_round_final_beep":        schema(),
	"cs_win_panel_final":         schema(),
	"grenade_thrown":             schema("userid", "weapon"),
	"smokegrenade_detonate":      schema("userid", "x", "y", "z", "entityid"),
	"smokegrenade_expired":       schema("userid", "entityid"),
	"flashbang_detonate":         schema("userid", "x", "y", "z", "entityid"),
	"hegrenade_detonate":         schema("userid", "x", "y", "z", "entityid"),
	"decoy_started":              schema("userid", "x", "y", "z", "entityid"),
	"decoy_detonate":             schema("userid", "x", "y", "z", "entityid"),
	"inferno_startburn":          schema("x", "y", "z", "entityid"),
	"inferno_expire":             schema("x", "y", "z", "entityid"),
	"cs_match_end_restart":       schema(),
}
