/*
Copyright © 2026 the HEM authors.
This file is part of HEM.

HEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HEM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hem is an hourly (or sub-hourly) dynamic thermal and energy
// simulation engine for a single residential dwelling. Given a building
// description, weather, and occupancy-derived schedules, it produces
// per-timestep and annual results for space heating and cooling demand,
// hot water demand, fabric and ventilation heat flows, HVAC operating
// states, and final energy by fuel.
package hem
