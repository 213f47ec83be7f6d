package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Command bytes. The terminal reads them directly; the viewer maps keys onto
// them through viewerKeys.
const (
	cmdPlayPause   = ' '
	cmdStop        = 's'
	cmdStepForward = '.'
	cmdStepBack    = ','
	cmdSound       = 'p'
	cmdClear       = 'c'
	cmdAdd         = 'a'
	cmdRemove      = 'x'
	cmdNext        = 'n'
	cmdPrev        = 'b'
	cmdSwitchKind  = 'k'
	cmdFreqUp      = '='
	cmdFreqDown    = '-'
	cmdAmpUp       = ']'
	cmdAmpDown     = '['
	cmdExport      = 'e'
	cmdQuit        = 'q'
	cmdInterrupt   = 0x03
	cmdFirstPreset = '1'
)

const controlsSummary = "space play/pause  s stop  ,/. step  p sound  1-4 presets  a add  x remove  n/b select  k sin/cos  -/= freq  [/] amp  c clear  e export  q quit"

var viewerKeys = []struct {
	key ebiten.Key
	cmd byte
}{
	{ebiten.KeySpace, cmdPlayPause},
	{ebiten.KeyS, cmdStop},
	{ebiten.KeyPeriod, cmdStepForward},
	{ebiten.KeyArrowRight, cmdStepForward},
	{ebiten.KeyComma, cmdStepBack},
	{ebiten.KeyArrowLeft, cmdStepBack},
	{ebiten.KeyP, cmdSound},
	{ebiten.KeyC, cmdClear},
	{ebiten.KeyA, cmdAdd},
	{ebiten.KeyX, cmdRemove},
	{ebiten.KeyDelete, cmdRemove},
	{ebiten.KeyN, cmdNext},
	{ebiten.KeyTab, cmdNext},
	{ebiten.KeyB, cmdPrev},
	{ebiten.KeyK, cmdSwitchKind},
	{ebiten.KeyEqual, cmdFreqUp},
	{ebiten.KeyArrowUp, cmdFreqUp},
	{ebiten.KeyMinus, cmdFreqDown},
	{ebiten.KeyArrowDown, cmdFreqDown},
	{ebiten.KeyBracketRight, cmdAmpUp},
	{ebiten.KeyBracketLeft, cmdAmpDown},
	{ebiten.KeyE, cmdExport},
	{ebiten.KeyQ, cmdQuit},
	{ebiten.KeyEscape, cmdQuit},
	{ebiten.KeyDigit1, cmdFirstPreset},
	{ebiten.KeyDigit2, cmdFirstPreset + 1},
	{ebiten.KeyDigit3, cmdFirstPreset + 2},
	{ebiten.KeyDigit4, cmdFirstPreset + 3},
}

// pressedCommands returns the commands whose keys went down this frame.
func pressedCommands() []byte {
	var cmds []byte
	for _, k := range viewerKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			cmds = append(cmds, k.cmd)
		}
	}
	return cmds
}

// handleCommand runs cmd and reports whether it asks to quit.
func (s *session) handleCommand(cmd byte, presets []string) bool {
	switch cmd {
	case cmdPlayPause:
		s.togglePlay()
	case cmdStop:
		s.stop()
	case cmdStepForward:
		s.stepBy(1)
	case cmdStepBack:
		s.stepBy(-1)
	case cmdSound:
		s.toggleSound()
	case cmdClear:
		s.clear()
	case cmdAdd:
		s.addRandomWave()
	case cmdRemove:
		s.removeSelected()
	case cmdNext:
		s.selectNext(1)
	case cmdPrev:
		s.selectNext(-1)
	case cmdSwitchKind:
		s.switchKind()
	case cmdFreqUp:
		s.adjustFrequency(frequencyStep)
	case cmdFreqDown:
		s.adjustFrequency(-frequencyStep)
	case cmdAmpUp:
		s.adjustAmplitude(amplitudeStep)
	case cmdAmpDown:
		s.adjustAmplitude(-amplitudeStep)
	case cmdExport:
		s.report("export", s.exportFile(s.export))
	case cmdQuit, cmdInterrupt:
		return true
	default:
		if i := int(cmd) - cmdFirstPreset; i >= 0 && i < len(presets) {
			s.applyPreset(presets[i])
		}
	}
	return false
}
