package mapping

// defaultTable ships with the tool so generation works without an external
// mappings file. Keys are matched as case-insensitive substrings of the
// extraction context tags.
const defaultTable = `
device_access:
  targetactive:
    tserver: "TargetActive()"
    tng: "m_device.get() != nullptr"
  getcomponent:
    tserver: "GetComponent<T>()"
    tng: "tng::hal::getHal().getComponent<T>()"
  halgpu:
    tserver: "Get<HalGpu>()"
    tng: "m_device->getGpu()"
  tcoreprocess:
    tserver: "GetTcoreProcess()"
    tng: "tng::hal::getHal().getTcoreProcess()"
memory:
  palloc:
    tserver: "env::System::palloc(size, minAddr, maxAddr, alignment, cacheType)"
    tng: "localNode.allocateBuffer(size, alignment)"
  pfree:
    tserver: "env::System::pfree(res)"
    tng: "automatic release when the buffer goes out of scope (RAII)"
registers:
  regread:
    tserver: "RegRead(offset)"
    tng: "m_device->readRegister(offset)"
  regwrite:
    tserver: "RegWrite(offset, value)"
    tng: "m_device->writeRegister(offset, value)"
logging:
  core_log:
    tserver: "CORE_LOG_DEBUG(m_lg) << msg << std::endl"
    tng: "m_log.debug(\"msg {}\", value)"
verification:
  expect:
    tserver: "if (bad) return Fail;"
    tng: "monitor.expectTrue(!bad, \"message\")"
test_structure:
  base_class:
    tserver: "ts::Test"
    tng: "tng::test::MonolithicTest"
  entry_point:
    tserver: "Result Main()"
    tng: "tng::test::Monitor run(const tng::test::ExecutionContext&)"
  parameters:
    tserver: "Parameter<T>(\"name\", default)"
    tng: "diag::value::ScalarValue<T> + k_TestCaseMap"
  result_pass:
    tserver: "return Pass;"
    tng: "return monitor;"
  result_fail:
    tserver: "return Fail;"
    tng: "monitor.fail(\"message\")"
`

// Default returns the built-in mapping table.
func Default() *Table {
	t, err := Parse([]byte(defaultTable))
	if err != nil {
		// The built-in table is a compile-time constant; failing to parse
		// it is a programming error.
		panic(err)
	}
	return t
}
