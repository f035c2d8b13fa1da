/*Package mindless is the base package of the mindless molecule generator.
It provides the molecule structure, atomic data, reading and writing of XYZ
files, covalent fragment detection and the heuristic that assigns a total
charge and a number of unpaired electrons to a random set of atoms.

The generation itself is split in subpackages:

	generate   random atoms and coordinates
	qm         the external quantum-chemistry engines (xtb, ORCA)
	refine     iterative optimization and postprocessing of a candidate
	generator  parallel generation attempts with early stop
	config     the configuration of a run

Element indexes are 0-based everywhere: hydrogen is 0 and an element with
atomic number Z has index Z-1.
*/
package mindless
