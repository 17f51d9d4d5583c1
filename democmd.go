/*

The demo-command enum: the closed set of frame kinds a container's inner
stream can carry.

*/

package csdemo

import "fmt"

// DemoCommand identifies the kind of one frame. It is the frame's raw command
// varint with bit 0x40 (the compressed flag) cleared.
type DemoCommand uint8

// The 22 known demo commands.
const (
	CmdStop DemoCommand = iota
	CmdFileHeader
	CmdFileInfo
	CmdSyncTick
	CmdSendTables
	CmdClassInfo
	CmdStringTables
	CmdPacket
	CmdSignonPacket
	CmdConsoleCmd
	CmdCustomData
	CmdCustomDataCallbacks
	CmdUserCmd
	CmdFullPacket
	CmdSaveGame
	CmdSpawnGroups
	CmdAnimationData
	CmdAnimationHeader
	CmdRecovery
	CmdErrorData
	CmdRequestRecovery
	CmdMax
)

var demoCommandNames = map[DemoCommand]string{
	CmdStop:                "DEM_Stop",
	CmdFileHeader:          "DEM_FileHeader",
	CmdFileInfo:            "DEM_FileInfo",
	CmdSyncTick:            "DEM_SyncTick",
	CmdSendTables:          "DEM_SendTables",
	CmdClassInfo:           "DEM_ClassInfo",
	CmdStringTables:        "DEM_StringTables",
	CmdPacket:              "DEM_Packet",
	CmdSignonPacket:        "DEM_SignonPacket",
	CmdConsoleCmd:          "DEM_ConsoleCmd",
	CmdCustomData:          "DEM_CustomData",
	CmdCustomDataCallbacks: "DEM_CustomDataCallbacks",
	CmdUserCmd:             "DEM_UserCmd",
	CmdFullPacket:          "DEM_FullPacket",
	CmdSaveGame:            "DEM_SaveGame",
	CmdSpawnGroups:         "DEM_SpawnGroups",
	CmdAnimationData:       "DEM_AnimationData",
	CmdAnimationHeader:     "DEM_AnimationHeader",
	CmdRecovery:            "DEM_Recovery",
	CmdErrorData:           "DEM_ErrorData",
	CmdRequestRecovery:     "DEM_RequestRecovery",
}

// String returns the symbolic name of the command, or a numeric placeholder
// for unknown values.
func (c DemoCommand) String() string {
	if name, ok := demoCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("DEM_Unknown(%d)", uint8(c))
}

// UnknownDemoCommandError is returned by frame parsing when a raw command
// byte does not map to a known DemoCommand.
type UnknownDemoCommandError struct {
	Code uint32
}

func (e *UnknownDemoCommandError) Error() string {
	return fmt.Sprintf("csdemo: unknown demo command %d", e.Code)
}

// parseDemoCommand maps a raw (post-mask) command code to a DemoCommand.
func parseDemoCommand(code uint32) (DemoCommand, error) {
	if code >= uint32(CmdMax) {
		return 0, &UnknownDemoCommandError{Code: code}
	}
	return DemoCommand(code), nil
}
