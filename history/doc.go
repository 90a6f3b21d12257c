/*

Package history allocates job bundle directories under a job history
root so that every submitted job leaves a record on disk.

Vocabulary:

- root: the configured job history directory (settings.job_history_dir),
	always made absolute before use
- bucket: a month subdirectory of root, named YYYY-MM
- bundle: one allocated directory inside a bucket, named
	YYYY-MM-DD-NN-<submitter>-<job>
- sequence: the NN part of a bundle name; the first bundle of a day is
	01, and each allocation takes the highest existing number plus one
- label: everything after the sequence, i.e. <submitter>-<job>
- limit: the longest absolute bundle path the platform can tolerate
	once room for the bundle's manifest files has been reserved; zero
	means there is no limit

*/

package history
