/*
 * interfaces.go, part of mindless.
 *
 *
 * Copyright 2024 The mindless authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package mindless

//Error is the interface for errors that the packages in this library
//implement. The Decorate method allows to add and retrieve information from
//the error as it travels up the call stack, without changing its type.
type Error interface {
	Error() string
	//Decorate adds deco to the trail of calls the error went through, and
	//returns the trail. An empty deco only returns the current trail.
	Decorate(deco string) []string
}

//CriticalError is an Error that can tell whether it should abort the
//whole run, or only the current attempt.
type CriticalError interface {
	Error
	Critical() bool
}
