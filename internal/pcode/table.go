package pcode

func init() {
	for i := 0; i < 32; i++ {
		def(byte(0x00+i), "sldc", literal, lit(i))
	}
	for i := 0; i < 16; i++ {
		def(byte(0x20+i), "sldl", local, lit(i+1))
		def(byte(0x30+i), "sldo", global, lit(i+1))
	}
	for i := 0; i < 8; i++ {
		def(byte(0x78+i), "sind", literal, lit(i))
	}

	def(0x80, "ldcb", literal, ub)
	def(0x81, "ldci", literal, w)
	def(0x82, "lca", constant, b)
	def(0x83, "ldc", constant, b, literal, ub)
	def(0x84, "lla", local, b)
	def(0x85, "ldo", global, b)
	def(0x86, "lao", global, b)
	def(0x87, "ldl", local, b)
	def(0x88, "lda", intermediate, db, b)
	def(0x89, "lod", intermediate, db, b)
	def(0x8a, "ujp", code, sb)
	def(0x8b, "ujpl", code, w)
	def(0x8c, "mpi")
	def(0x8d, "dvi")
	def(0x8e, "stm", literal, ub)
	def(0x8f, "modi")

	def(0x90, "cpl", proc, local, ub)
	def(0x91, "cpg", proc, global, ub)
	def(0x92, "cpi", proc, intermediate, db, ub)
	def(0x93, "cxl", segment, proc, local, ub, ub)
	def(0x94, "cxg", segment, proc, global, ub, ub)
	def(0x95, "cxi", segment, proc, intermediate, ub, db, ub)
	def(0x96, "rpu", literal, b)
	def(0x97, "cpf")
	def(0x98, "ldcn")
	def(0x99, "lsl", literal, db)
	def(0x9a, "lde", segment, ub, literal, b)
	def(0x9b, "lae", segment, ub, literal, b)
	def(0x9c, "nop")
	def(0x9d, "lpr")
	def(0x9e, "bpt")
	def(0x9f, "bnot")

	def(0xa0, "lor")
	def(0xa1, "land")
	def(0xa2, "adi")
	def(0xa3, "sbi")
	def(0xa4, "stl", local, b)
	def(0xa5, "sro", global, b)
	def(0xa6, "str", intermediate, db, b)
	def(0xa7, "ldb")

	def(0xb0, "equi")
	def(0xb1, "neqi")
	def(0xb2, "leqi")
	def(0xb3, "geqi")
	def(0xb4, "leusw")
	def(0xb5, "geusw")
	def(0xb6, "equpwr")
	def(0xb7, "leqpwr")
	def(0xb8, "geqpwr")
	def(0xb9, "equbyt")
	def(0xba, "leqbyt")
	def(0xbb, "geqbyt")
	def(0xbc, "srs")
	def(0xbd, "swap")
	def(0xbe, "tnc")
	def(0xbf, "rnd")

	def(0xc0, "adr")
	def(0xc1, "sbr")
	def(0xc2, "mpr")
	def(0xc3, "dvr")
	def(0xc4, "sto")
	def(0xc5, "mov", literal, b)
	def(0xc6, "dup2")
	def(0xc7, "adj", literal, ub)
	def(0xc8, "stb")
	def(0xc9, "ldp")
	def(0xca, "stp")
	def(0xcb, "chk")
	def(0xcc, "flt")
	def(0xcd, "equreal")
	def(0xce, "leqreal")
	def(0xcf, "geqreal")

	def(0xd0, "ldm", literal, ub)
	def(0xd1, "spr")
	def(0xd2, "efj", code, sb)
	def(0xd3, "nfj", code, sb)
	def(0xd4, "fjp", code, sb)
	def(0xd5, "fjpl", code, w)
	def(0xd6, "xjp", caseTable, b)
	def(0xd7, "ixa", literal, b)
	def(0xd8, "ixp", literal, ub, literal, ub)
	def(0xd9, "ste", segment, ub, literal, b)
	def(0xda, "inn")
	def(0xdb, "uni")
	def(0xdc, "int")
	def(0xdd, "dif")
	def(0xde, "signal")
	def(0xdf, "wait")

	def(0xe0, "abi")
	def(0xe1, "ngi")
	def(0xe2, "dup1")
	def(0xe3, "abr")
	def(0xe4, "ngr")
	def(0xe5, "lnot")
	def(0xe6, "ind", literal, b)
	def(0xe7, "inc", literal, b)
}
