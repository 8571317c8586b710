/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"fmt"

	"github.com/dc0d/onexit"
	"github.com/launix-de/almostlisp/alm"
)

type SettingsT struct {
	Trace          bool
	TracePrint     bool
	MaxReduceSteps int
}

var Settings SettingsT = SettingsT{false, false, 0}

// call this after you filled Settings
func InitSettings() {
	if err := alm.SetTrace(Settings.Trace); err != nil {
		alm.PrintError("cannot open trace file: " + err.Error())
	}
	alm.TracePrint = Settings.TracePrint
	alm.MaxReduceSteps = Settings.MaxReduceSteps
	onexit.Register(func() { alm.SetTrace(false) }) // close trace file on exit
}

// ChangeSettings backs the (settings) builtin. No arguments dumps all
// settings, one argument reads a setting, two arguments change one.
// Boolean settings are represented as the integers 0 and 1.
func ChangeSettings(en *alm.Env, a ...alm.Term) (alm.Term, error) {
	if len(a) == 0 {
		return alm.NewString(fmt.Sprintf("Trace=%t TracePrint=%t MaxReduceSteps=%d",
			Settings.Trace, Settings.TracePrint, Settings.MaxReduceSteps)), nil
	} else if len(a) == 1 {
		switch a[0].Text() {
		case "Trace":
			return boolTerm(Settings.Trace), nil
		case "TracePrint":
			return boolTerm(Settings.TracePrint), nil
		case "MaxReduceSteps":
			return alm.NewInteger(int64(Settings.MaxReduceSteps)), nil
		default:
			return alm.Term{}, fmt.Errorf("unknown setting: %s", a[0].Text())
		}
	}
	switch a[0].Text() {
	case "Trace":
		Settings.Trace = a[1].Int() != 0
		if err := alm.SetTrace(Settings.Trace); err != nil {
			return alm.Term{}, err
		}
	case "TracePrint":
		Settings.TracePrint = a[1].Int() != 0
		alm.TracePrint = Settings.TracePrint
	case "MaxReduceSteps":
		Settings.MaxReduceSteps = int(a[1].Int())
		alm.MaxReduceSteps = Settings.MaxReduceSteps
	default:
		return alm.Term{}, fmt.Errorf("unknown setting: %s", a[0].Text())
	}
	return alm.NewInteger(1), nil
}

func boolTerm(b bool) alm.Term {
	if b {
		return alm.NewInteger(1)
	}
	return alm.NewInteger(0)
}
